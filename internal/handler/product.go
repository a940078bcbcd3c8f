package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"github.com/flicky/e-games-api/internal/apperror"
	"github.com/flicky/e-games-api/internal/dto"
	"github.com/flicky/e-games-api/internal/uploader"
)

var errImagesDisabled = apperror.BadRequest("Image upload is not configured.")

type productService interface {
	TopPlatforms(ctx context.Context) ([]dto.PlatformPopularityResponse, error)
	Search(ctx context.Context, term string, limit, offset int) ([]dto.SearchGameResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error)
	List(ctx context.Context, req dto.ListProductsRequest) (*dto.PagedProductsResponse, error)
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	productService productService
	images         uploader.ImageUploader
	maxImageSize   int64
}

func NewProductHandler(productService productService, images uploader.ImageUploader, maxImageSize int64) *ProductHandler {
	return &ProductHandler{productService: productService, images: images, maxImageSize: maxImageSize}
}

func (h *ProductHandler) TopPlatforms(c *gin.Context) {
	resp, err := h.productService.TopPlatforms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.productService.Search(c.Request.Context(), req.Term, req.Limit, req.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) List(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.productService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := bindProduct(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if isMultipart(c) {
		price, err := formPrice(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if price != nil {
			req.Price = *price
		}
		if err := h.uploadImages(c, &req.Logo, &req.Background); err != nil {
			respondError(c, err)
			return
		}
	}

	resp, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req dto.UpdateProductRequest
	if err := bindProduct(c, &req); err != nil {
		respondError(c, err)
		return
	}
	if isMultipart(c) {
		if req.Price, err = formPrice(c); err != nil {
			respondError(c, err)
			return
		}
		if err := h.uploadImages(c, &req.Logo, &req.Background); err != nil {
			respondError(c, err)
			return
		}
	}

	resp, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), binding.MIMEMultipartPOSTForm)
}

// bindProduct binds a JSON body or a multipart form into req.
func bindProduct(c *gin.Context, req any) error {
	var err error
	if isMultipart(c) {
		err = c.ShouldBindWith(req, binding.FormMultipart)
	} else {
		err = c.ShouldBindJSON(req)
	}
	if err != nil {
		return bindError(err)
	}
	return nil
}

// formPrice parses the price form value. It returns nil when the field is absent.
func formPrice(c *gin.Context) (*decimal.Decimal, error) {
	raw, ok := c.GetPostForm("price")
	if !ok {
		return nil, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("The value '%s' is not valid.", raw))
	}
	return &price, nil
}

// uploadImages replaces logo and background with the URLs of uploaded files.
// Fields without a file part keep their bound value.
func (h *ProductHandler) uploadImages(c *gin.Context, logo, background **string) error {
	if err := h.uploadImage(c, "logo", logo); err != nil {
		return err
	}
	return h.uploadImage(c, "background", background)
}

func (h *ProductHandler) uploadImage(c *gin.Context, field string, dst **string) error {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return apperror.Validation(fmt.Sprintf("The %s file could not be read.", field))
	}
	if fh.Size == 0 {
		return nil
	}
	if h.maxImageSize > 0 && fh.Size > h.maxImageSize {
		return apperror.Validation(fmt.Sprintf("The %s file must be at most %d bytes.", field, h.maxImageSize))
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return apperror.Validation(fmt.Sprintf("The %s file must be an image.", field))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	url, err := h.images.Upload(c.Request.Context(), fh.Filename, f)
	if errors.Is(err, uploader.ErrDisabled) {
		return errImagesDisabled
	}
	if err != nil {
		return err
	}
	*dst = &url
	return nil
}
