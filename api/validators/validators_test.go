package validators

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestDecodeJSONBodyCollectsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"short"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"password": "must be at least 8",
	}, typed.Details())
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co","password":"longenough","role":"admin"}`))
	var body loginBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=500&bad=x", nil)

	page, err := ParseQueryInt(req, "page", 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	missing, err := ParseQueryInt(req, "missing", 7, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 7, missing)

	_, err = ParseQueryInt(req, "limit", 10, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryInt(req, "bad", 10, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseUUIDs(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/?userId="+id.String()+"&broken=123", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	fromPath, err := ParseURLUUID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, id, fromPath)

	fromQuery, err := ParseQueryUUID(req, "userId")
	require.NoError(t, err)
	require.NotNil(t, fromQuery)
	assert.Equal(t, id, *fromQuery)

	absent, err := ParseQueryUUID(req, "other")
	require.NoError(t, err)
	assert.Nil(t, absent)

	_, err = ParseQueryUUID(req, "broken")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type postForm struct {
	Content  string  `form:"content" json:"content" validate:"required"`
	HorseID  *string `form:"horseId" json:"horseId"`
	IsPublic bool    `form:"isPublic" json:"isPublic"`
}

func multipartRequest(t *testing.T, fields map[string]string, fileField, fileName, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestParseMultipartDecodesFieldsAndFiles(t *testing.T) {
	req := multipartRequest(t, map[string]string{"content": " hello ", "isPublic": "true"}, "media", "pony.png", "image/png", []byte("png-bytes"))

	form, err := ParseMultipart(httptest.NewRecorder(), req, 1<<20)
	require.NoError(t, err)
	defer form.Close()

	var dto postForm
	require.NoError(t, form.Decode(&dto))
	assert.Equal(t, "hello", dto.Content)
	assert.True(t, dto.IsPublic)
	assert.Nil(t, dto.HorseID)

	file, err := form.File("media")
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, "pony.png", file.Name)
	assert.Equal(t, "image/png", file.ContentType)
	data, err := io.ReadAll(file.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	none, err := form.File("missing")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestParseMultipartValidatesStruct(t *testing.T) {
	req := multipartRequest(t, map[string]string{"isPublic": "maybe"}, "", "", "", nil)
	form, err := ParseMultipart(httptest.NewRecorder(), req, 1<<20)
	require.NoError(t, err)
	defer form.Close()

	var dto postForm
	err = form.Decode(&dto)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseMultipartEnforcesSizeCap(t *testing.T) {
	req := multipartRequest(t, map[string]string{"content": "x"}, "media", "big.mp4", "video/mp4", bytes.Repeat([]byte("a"), 4096))
	_, err := ParseMultipart(httptest.NewRecorder(), req, 1024)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
