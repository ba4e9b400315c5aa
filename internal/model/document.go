package model

import "time"

// Document is an uploaded file belonging to a space. StoragePath and UserID stay server-side.
type Document struct {
	ID               string    `json:"id" bson:"_id"`
	SpaceID          string    `json:"space_id" bson:"space_id"`
	UserID           string    `json:"-" bson:"user_id"`
	OriginalFileName string    `json:"original_file_name" bson:"original_file_name"`
	FileType         string    `json:"file_type" bson:"file_type"`
	StoragePath      string    `json:"-" bson:"storage_path"`
	SizeInBytes      int64     `json:"size_in_bytes" bson:"size_in_bytes"`
	UploadedAt       time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// UploadReceipt is returned after a document has been stored and indexed.
type UploadReceipt struct {
	ID                  string `json:"id"`
	Filename            string `json:"filename"`
	SpaceID             string `json:"space_id"`
	SpaceName           string `json:"space_name"`
	FileSizeBytes       int64  `json:"file_size_bytes"`
	ExtractedTextLength int    `json:"extracted_text_length"`
	Status              string `json:"status"`
}
