package usecase

import "context"

// ImagesInfra загружает изображения продукта и чистит осиротевшие объекты.
type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(ids []string)
}

// ImageCompressor приводит изображение к целевому размеру в килобайтах.
type ImageCompressor interface {
	Compress(data []byte, maxSizeKB int) ([]byte, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
