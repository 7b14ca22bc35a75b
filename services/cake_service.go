package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/barmor12/cakeshop-backend/models"
	awspkg "github.com/barmor12/cakeshop-backend/pkg/aws"
	"github.com/barmor12/cakeshop-backend/repository"
)

const imageUploadExpirySeconds = 900

// ImageUpload is a presigned upload slot for a cake image.
type ImageUpload struct {
	UploadURL string            `json:"upload_url"`
	ImageURL  string            `json:"image_url"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// CakeService defines the interface for catalog business logic.
type CakeService interface {
	GetCake(ctx context.Context, id uuid.UUID) (*models.Cake, *ServiceError)
	ListCakes(ctx context.Context, page, limit int) ([]models.Cake, int64, *ServiceError)
	CreateCake(ctx context.Context, req *models.CreateCakeRequest) (*models.Cake, *ServiceError)
	UpdateCake(ctx context.Context, id uuid.UUID, req *models.UpdateCakeRequest) (*models.Cake, *ServiceError)
	DeleteCake(ctx context.Context, id uuid.UUID) *ServiceError
	// PresignImageUpload returns a presigned PUT URL the client uploads the
	// image to, and the public URL to store on the cake afterwards.
	PresignImageUpload(ctx context.Context, req *models.ImageUploadRequest) (*ImageUpload, *ServiceError)
}

type cakeServiceImpl struct {
	cakes       repository.CakeRepository
	awsCfg      sdkaws.Config
	imageBucket string
	logger      *zap.Logger
}

func NewCakeService(cakes repository.CakeRepository, awsCfg sdkaws.Config, imageBucket string, logger *zap.Logger) CakeService {
	return &cakeServiceImpl{
		cakes:       cakes,
		awsCfg:      awsCfg,
		imageBucket: imageBucket,
		logger:      logger,
	}
}

func (s *cakeServiceImpl) GetCake(ctx context.Context, id uuid.UUID) (*models.Cake, *ServiceError) {
	cake, err := s.cakes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("Cake not found")
		}
		s.logger.Error("Failed to load cake", zap.String("cake_id", id.String()), zap.Error(err))
		return nil, internal("Failed to load cake")
	}
	return cake, nil
}

func (s *cakeServiceImpl) ListCakes(ctx context.Context, page, limit int) ([]models.Cake, int64, *ServiceError) {
	cakes, total, err := s.cakes.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list cakes", zap.Error(err))
		return nil, 0, internal("Failed to list cakes")
	}
	return cakes, total, nil
}

func (s *cakeServiceImpl) CreateCake(ctx context.Context, req *models.CreateCakeRequest) (*models.Cake, *ServiceError) {
	if req.Cost > req.Price {
		return nil, badRequest("Cost cannot exceed price")
	}

	cake := &models.Cake{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	}
	if err := s.cakes.Create(ctx, cake); err != nil {
		s.logger.Error("Failed to create cake", zap.String("name", req.Name), zap.Error(err))
		return nil, internal("Failed to create cake")
	}

	s.logger.Info("Cake created", zap.String("cake_id", cake.ID.String()), zap.String("name", cake.Name))
	return cake, nil
}

func (s *cakeServiceImpl) UpdateCake(ctx context.Context, id uuid.UUID, req *models.UpdateCakeRequest) (*models.Cake, *ServiceError) {
	cake, svcErr := s.GetCake(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	if req.Name != nil {
		cake.Name = *req.Name
	}
	if req.Description != nil {
		cake.Description = *req.Description
	}
	if req.Price != nil {
		cake.Price = *req.Price
	}
	if req.Cost != nil {
		cake.Cost = *req.Cost
	}
	if req.Stock != nil {
		cake.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		cake.ImageURL = *req.ImageURL
	}
	if cake.Cost > cake.Price {
		return nil, badRequest("Cost cannot exceed price")
	}

	if err := s.cakes.Update(ctx, cake); err != nil {
		s.logger.Error("Failed to update cake", zap.String("cake_id", id.String()), zap.Error(err))
		return nil, internal("Failed to update cake")
	}
	return cake, nil
}

func (s *cakeServiceImpl) DeleteCake(ctx context.Context, id uuid.UUID) *ServiceError {
	if err := s.cakes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Cake not found")
		}
		s.logger.Error("Failed to delete cake", zap.String("cake_id", id.String()), zap.Error(err))
		return internal("Failed to delete cake")
	}
	s.logger.Info("Cake deleted", zap.String("cake_id", id.String()))
	return nil
}

func (s *cakeServiceImpl) PresignImageUpload(ctx context.Context, req *models.ImageUploadRequest) (*ImageUpload, *ServiceError) {
	if s.imageBucket == "" {
		return nil, internal("Image uploads are not configured")
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, badRequest("Only image uploads are allowed")
	}

	key := fmt.Sprintf("cakes/%s%s", uuid.NewString(), path.Ext(req.Filename))
	uploadURL, headers, err := awspkg.GeneratePresignedPutURL(ctx, s.awsCfg, s.imageBucket, key, req.ContentType, imageUploadExpirySeconds)
	if err != nil {
		s.logger.Error("Failed to presign image upload", zap.Error(err))
		return nil, internal("Failed to create upload URL")
	}

	return &ImageUpload{
		UploadURL: uploadURL,
		ImageURL:  fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.imageBucket, key),
		Headers:   headers,
	}, nil
}
