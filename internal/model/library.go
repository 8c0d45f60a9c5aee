package model

import "time"

const (
	DefaultFolderColor   = "#007bff"
	DefaultCategoryColor = "#6c757d"
	DefaultTagColor      = "#007bff"
)

// Folder папка пользователя, может быть вложенной.
type Folder struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	UserID   int64  `gorm:"not null;index" json:"user_id"`
	ParentID *int64 `gorm:"index" json:"parent_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"size:7;not null;default:'#007bff'" json:"color"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Folder) TableName() string { return "academic_folders" }

// FolderNode папка вместе с дочерними папками.
type FolderNode struct {
	Folder
	Children []*FolderNode `json:"children"`
}

// UserCategory плоская пользовательская категория.
type UserCategory struct {
	ID     int64 `gorm:"primaryKey" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Color       string `gorm:"size:7;not null;default:'#6c757d'" json:"color"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserCategory) TableName() string { return "user_categories" }

// Tag общий для всех пользователей тег, UsageCount считает привязки к ресурсам.
type Tag struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Category   string `gorm:"size:50" json:"category"`
	UsageCount int    `gorm:"not null;default:0" json:"usage_count"`
	Color      string `gorm:"size:7;not null;default:'#007bff'" json:"color"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

// AcademicResourceTag связь ресурса и тега.
type AcademicResourceTag struct {
	ID         int64 `gorm:"primaryKey"`
	ResourceID int64 `gorm:"not null;uniqueIndex:idx_resource_tag"`
	TagID      int64 `gorm:"not null;uniqueIndex:idx_resource_tag;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (AcademicResourceTag) TableName() string { return "academic_resource_tags" }

// Subject узел общего справочника дисциплин.
type Subject struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	ParentID    *int64 `gorm:"index" json:"parent_id"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Subject) TableName() string { return "academic_subjects" }
