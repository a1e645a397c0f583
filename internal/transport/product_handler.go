package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"storefront-be/internal/product"

	"github.com/gin-gonic/gin"
)

const maxMultipartMemory = 32 << 20

type productHandler struct {
	svc product.Service
}

func (h *productHandler) list(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *productHandler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "expected multipart form")
		return
	}

	fields, err := formFields(form)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	images, closeAll, err := openImages(form)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeAll()

	p, err := h.svc.Create(c.Request.Context(), product.CreateInput{
		Fields: fields,
		Images: images,
		Colors: form.Value["colors"],
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *productHandler) update(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "expected multipart form")
		return
	}

	fields, err := formFields(form)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	images, closeAll, err := openImages(form)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer closeAll()

	input := product.UpdateInput{
		Fields:    fields,
		NewImages: images,
		Colors:    form.Value["colors"],
	}
	// One entry per image slot; new uploads are sent as "" or a blob: preview.
	if slots, ok := form.Value["existingImages"]; ok {
		input.ExistingImages = append([]string{}, slots...)
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *productHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type stockItemRequest struct {
	ID        string `json:"_id"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type decrementRequest struct {
	Products []stockItemRequest `json:"products"`
}

// decrementStock answers 200 whenever the body parses; the per-item
// outcome is in results.
func (h *productHandler) decrementStock(c *gin.Context) {
	var req decrementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON payload")
		return
	}

	items := make([]product.StockItem, len(req.Products))
	for i, it := range req.Products {
		id := it.ID
		if id == "" {
			id = it.ProductID
		}
		items[i] = product.StockItem{ProductID: id, Size: it.Size, Quantity: it.Quantity}
	}

	results, err := h.svc.DecrementStock(c.Request.Context(), items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func firstValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// formFields reads the product form. Per-size counters come from the
// xsQuantity..xxxlQuantity fields; the older "sizes" JSON object is also
// accepted, with labels outside XS..XXXL treated as EUR sizes.
func formFields(form *multipart.Form) (product.Fields, error) {
	f := product.Fields{
		Title:           firstValue(form, "title"),
		Price:           firstValue(form, "price"),
		PriceAfterSolde: firstValue(form, "priceAfterSolde"),
		Category:        firstValue(form, "category"),
		Description:     firstValue(form, "description"),
		Quantities:      map[product.Size]string{},
	}

	if raw := firstValue(form, "sizes"); raw != "" {
		var sizes map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
			return f, errors.New("sizes must be a JSON object")
		}
		for label, value := range sizes {
			n := strings.Trim(string(value), `" `)
			if size, ok := product.ParseSize(label); ok {
				f.Quantities[size] = n
				continue
			}
			count, err := strconv.Atoi(n)
			if err != nil {
				count = 0
			}
			if f.EurQuantities == nil {
				f.EurQuantities = map[string]int{}
			}
			f.EurQuantities[label] = count
		}
	}

	for _, size := range product.Sizes {
		if v, ok := form.Value[size.Field()]; ok && len(v) > 0 {
			f.Quantities[size] = v[0]
		}
	}

	if raw := firstValue(form, "eurQuantities"); raw != "" {
		var eur map[string]int
		if err := json.Unmarshal([]byte(raw), &eur); err != nil {
			return f, errors.New("eurQuantities must be a JSON object of integers")
		}
		f.EurQuantities = eur
	}

	return f, nil
}

// openImages opens every uploaded "images" file. The returned func closes them.
func openImages(form *multipart.Form) ([]product.ImageUpload, func(), error) {
	var (
		uploads []product.ImageUpload
		files   []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("cannot read image %s", fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, product.ImageUpload{Filename: fh.Filename, Content: f})
	}
	return uploads, closeAll, nil
}
