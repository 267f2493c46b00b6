package request

type UploadURL struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}
