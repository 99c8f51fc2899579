package dto

// UploadResponse is returned after a file is stored.
type UploadResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}
