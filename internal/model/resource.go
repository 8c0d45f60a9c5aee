package model

import (
	"time"

	"gorm.io/datatypes"
)

// FileType тип прикреплённого к ресурсу содержимого.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDoc  FileType = "doc"
	FileTypeDocx FileType = "docx"
	FileTypeTxt  FileType = "txt"
	FileTypeNote FileType = "note" // без файла
)

// UploadableFileTypes расширения, разрешённые для загрузки.
var UploadableFileTypes = map[FileType]bool{
	FileTypePDF:  true,
	FileTypeDoc:  true,
	FileTypeDocx: true,
	FileTypeTxt:  true,
}

// ReadingStatus статус чтения ресурса владельцем.
type ReadingStatus string

const (
	StatusUnread    ReadingStatus = "unread"
	StatusReading   ReadingStatus = "reading"
	StatusCompleted ReadingStatus = "completed"
	StatusReviewing ReadingStatus = "reviewing"
)

// Valid проверяет, что статус из известного набора.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusUnread, StatusReading, StatusCompleted, StatusReviewing:
		return true
	}
	return false
}

// AcademicResource запись об академическом документе с необязательным файлом.
type AcademicResource struct {
	ID       int64 `gorm:"primaryKey" json:"id"`
	AuthorID int64 `gorm:"not null;index" json:"author_id"` // владелец, users.id

	Author *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Title    string `gorm:"size:300;not null" json:"title"`
	Authors  string `gorm:"type:text" json:"authors"`
	Abstract string `gorm:"type:text" json:"abstract"`
	Content  string `gorm:"type:text" json:"content"`

	FilePath string   `gorm:"size:500" json:"file_path"`
	FileType FileType `gorm:"size:10;not null;default:'pdf'" json:"file_type"`
	FileSize int64    `gorm:"not null;default:0" json:"file_size"`

	Subject         string                      `gorm:"size:100" json:"subject"`
	Keywords        datatypes.JSONSlice[string] `json:"keywords"`
	PublicationYear *int                        `json:"publication_year"`
	CitationCount   int                         `gorm:"not null;default:0" json:"citation_count"`
	ReadingStatus   ReadingStatus               `gorm:"size:16;not null;default:'unread';index" json:"reading_status"`
	Notes           string                      `gorm:"type:text" json:"notes"`

	FolderID       *int64 `gorm:"index" json:"folder_id"`
	UserCategoryID *int64 `gorm:"index" json:"user_category_id"`

	// Tags заполняется при чтении из academic_resource_tags.
	Tags []Tag `gorm:"-" json:"tags"`

	UploadTime time.Time `gorm:"autoCreateTime" json:"upload_time"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName имя таблицы в БД.
func (AcademicResource) TableName() string { return "academic_resources" }
