package entity

import (
	"io"
	"time"
)

// Picture - картинка, пришедшая от клиента. ContentType и Size заявлены клиентом и перепроверяются
type Picture struct {
	Filename    string
	ContentType string
	Size        int64
	RawBytes    io.Reader
}

type CompressedPicture struct {
	Data        []byte
	ContentType string
}

type BlobInfo struct {
	Key          string
	URL          string
	Size         int64
	LastModified time.Time
}

type SweepReport struct {
	OrphanedBlobs       []string `json:"orphaned_blobs"`
	DeletedBlobs        int      `json:"deleted_blobs"`
	CoursesMissingBlobs []string `json:"courses_missing_blobs"`
	// UnresolvedLinks ссылки курсов, не принадлежащие этому хранилищу; пока они есть, удаление сирот пропускается
	UnresolvedLinks     []string `json:"unresolved_links"`
	Errors              int      `json:"errors"`
}
