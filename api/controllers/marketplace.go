package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shashankphatkure/equico-app/api/controllers/callercontext"
	"github.com/Shashankphatkure/equico-app/api/middleware"
	"github.com/Shashankphatkure/equico-app/api/responses"
	"github.com/Shashankphatkure/equico-app/api/validators"
	"github.com/Shashankphatkure/equico-app/internal/listings"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

const browseLimitDefault = 12

type listingCreateForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"required,max=5000"`
	Price       string `form:"price" json:"price" validate:"required"`
	Condition   string `form:"condition" json:"condition" validate:"required"`
	Category    string `form:"category" json:"category" validate:"required,max=100"`
}

type listingUpdateForm struct {
	Title         *string `form:"title" json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `form:"description" json:"description" validate:"omitempty,min=1,max=5000"`
	Price         *string `form:"price" json:"price"`
	Condition     *string `form:"condition" json:"condition"`
	Category      *string `form:"category" json:"category" validate:"omitempty,min=1,max=100"`
	Status        *string `form:"status" json:"status"`
	DeletedImages *string `form:"deletedImages" json:"deletedImages"`
}

// ListListings browses active listings. Anonymous callers are allowed.
func ListListings(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		params, err := parseListingQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), middleware.UserUUIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetListing records a view and returns the listing detail.
func GetListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		listingID, err := validators.ParseURLUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), middleware.UserUUIDFromContext(r.Context()), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// CreateListing requires an existing shop.
func CreateListing(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return createListing(svc, maxUploadBytes, logg, false)
}

// CreateShopListing creates the caller's shop on demand.
func CreateShopListing(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return createListing(svc, maxUploadBytes, logg, true)
}

func createListing(svc listings.Service, maxUploadBytes int64, logg *logger.Logger, ensureShop bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		ownerID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := validators.ParseMultipart(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		var body listingCreateForm
		if err := form.Decode(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := parsePrice("price", body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		condition, err := enums.ParseListingCondition(body.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, fieldError("condition", "must be one of new, like-new, used, for-parts"))
			return
		}
		images, err := form.Files("images")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := listings.CreateInput{
			Title:       body.Title,
			Description: body.Description,
			Price:       price,
			Condition:   condition,
			Category:    body.Category,
			Images:      images,
		}
		create := svc.Create
		if ensureShop {
			create = svc.CreateInShop
		}
		listing, err := create(r.Context(), ownerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

// UpdateListing applies a partial multipart update.
func UpdateListing(svc listings.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		ownerID, listingID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := validators.ParseMultipart(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		var body listingUpdateForm
		if err := form.Decode(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Images, err = form.Files("images"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Update(r.Context(), ownerID, listingID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func (f listingUpdateForm) toInput() (listings.UpdateInput, error) {
	input := listings.UpdateInput{
		Title:       f.Title,
		Description: f.Description,
		Category:    f.Category,
	}
	if raw := emptyToNil(f.Price); raw != nil {
		price, err := parsePrice("price", *raw)
		if err != nil {
			return input, err
		}
		input.Price = &price
	}
	if raw := emptyToNil(f.Condition); raw != nil {
		condition, err := enums.ParseListingCondition(*raw)
		if err != nil {
			return input, fieldError("condition", "must be one of new, like-new, used, for-parts")
		}
		input.Condition = &condition
	}
	if raw := emptyToNil(f.Status); raw != nil {
		status, err := enums.ParseListingStatus(*raw)
		if err != nil {
			return input, fieldError("status", "must be one of active, sold, archived")
		}
		input.Status = &status
	}
	if raw := emptyToNil(f.DeletedImages); raw != nil {
		input.DeletedImages = splitList(*raw)
	}
	return input, nil
}

func DeleteListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		ownerID, listingID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), ownerID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

func SaveListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		userID, listingID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Save(r.Context(), userID, listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, saved)
	}
}

func UnsaveListing(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}
		userID, listingID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unsave(r.Context(), userID, listingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

func parseListingQuery(r *http.Request) (listings.QueryParams, error) {
	query := r.URL.Query()
	params := listings.QueryParams{
		Search:   validators.SanitizeString(query.Get("search"), 200),
		Category: validators.SanitizeString(query.Get("category"), 100),
	}

	for _, raw := range query["condition"] {
		for _, value := range splitList(raw) {
			condition, err := enums.ParseListingCondition(value)
			if err != nil {
				return params, fieldError("condition", "must be one of new, like-new, used, for-parts")
			}
			params.Conditions = append(params.Conditions, condition)
		}
	}

	for _, key := range []string{"minPrice", "maxPrice"} {
		raw := strings.TrimSpace(query.Get(key))
		if raw == "" {
			continue
		}
		value, err := parsePrice(key, raw)
		if err != nil {
			return params, err
		}
		if key == "minPrice" {
			params.MinPrice = &value
		} else {
			params.MaxPrice = &value
		}
	}

	sort, err := enums.ParseListingSort(strings.TrimSpace(query.Get("sortBy")))
	if err != nil {
		return params, fieldError("sortBy", "must be one of newest, oldest, price-low, price-high, most-viewed")
	}
	params.Sort = sort

	if params.Page, params.Limit, err = validators.ParsePage(r, browseLimitDefault); err != nil {
		return params, err
	}
	return params, nil
}

func parsePrice(field, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return decimal.Zero, fieldError(field, "must be a non-negative number")
	}
	return value, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: message})
}
