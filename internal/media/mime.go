package media

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Folder is the top-level object prefix an upload lands under.
type Folder string

const (
	FolderListings       Folder = "listings"
	FolderProfiles       Folder = "profiles"
	FolderShops          Folder = "shops"
	FolderPosts          Folder = "posts"
	FolderMedicalRecords Folder = "medical-records"
)

type mimeGroup string

const (
	mimeGroupImages mimeGroup = "images"
	mimeGroupVideos mimeGroup = "videos"
	mimeGroupPDFs   mimeGroup = "pdfs"
)

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/gif", "image/heic"},
	mimeGroupVideos: {"video/mp4", "video/webm", "video/quicktime"},
	mimeGroupPDFs:   {"application/pdf"},
}

var allowedGroupsByFolder = map[Folder][]mimeGroup{
	FolderListings:       {mimeGroupImages},
	FolderProfiles:       {mimeGroupImages},
	FolderShops:          {mimeGroupImages},
	FolderPosts:          {mimeGroupImages, mimeGroupVideos},
	FolderMedicalRecords: {mimeGroupPDFs, mimeGroupImages},
}

func normalizeContentType(raw string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(raw))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return strings.ToLower(mediaType)
}

func validateContentType(folder Folder, contentType string) error {
	groups, ok := allowedGroupsByFolder[folder]
	if !ok {
		return fmt.Errorf("unknown upload folder %q", folder)
	}
	ct := normalizeContentType(contentType)
	names := make([]string, 0, len(groups))
	for _, group := range groups {
		for _, candidate := range mimeGroupTypes[group] {
			if candidate == ct {
				return nil
			}
		}
		names = append(names, string(group))
	}
	return fmt.Errorf("content type %q not allowed; expected %s", contentType, strings.Join(names, " or "))
}

func extensionFor(fileName, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(normalizeContentType(contentType)); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
