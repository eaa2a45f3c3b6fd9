package domain

// Image описывает сжатое изображение, которое сохраняется в S3.
// ID — непрозрачный идентификатор, под которым изображение ссылается из каталога.
type Image struct {
	ID          string
	Bucket      string
	ObjectKey   string
	Bytes       []byte
	Size        *int64
	ContentType *string // Example: "image/jpeg"
}

func NewImage(id string, bucket string, objectKey string, data []byte, size *int64, contentType *string) *Image {
	return &Image{
		ID:          id,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		Bytes:       data,
		Size:        size,
		ContentType: contentType,
	}
}
