package post_http

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	model "marites-post-service/internal/domain/models"
)

// PostRequest is the body accepted by create and update. Fields the server
// owns (id, timestamps) are ignored when present.
type PostRequest struct {
	Title     string   `json:"title" validate:"required"`
	Content   string   `json:"content" validate:"required"`
	Published flag     `json:"published"`
	Author    string   `json:"author" validate:"required"`
	Rating    *float64 `json:"rating"`
	Likes     *int     `json:"likes" validate:"omitempty,gte=0"`
	Comments  []string `json:"comments"`
}

func (r *PostRequest) published() bool {
	if !r.Published.set {
		return true
	}
	return r.Published.value
}

// flag is an optional boolean that tells an absent key from an explicit null.
type flag struct {
	set   bool
	null  bool
	value bool
}

func (f *flag) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(data, []byte("null")) {
		f.null = true
		return nil
	}
	if err := json.Unmarshal(data, &f.value); err != nil {
		return &json.UnmarshalTypeError{Value: "non-boolean", Type: reflect.TypeOf(false), Field: "published"}
	}
	return nil
}

func (r *PostRequest) ToCreateDTO() *model.CreatePostDTO {
	likes := 0
	if r.Likes != nil {
		likes = *r.Likes
	}
	return &model.CreatePostDTO{
		Title:     r.Title,
		Content:   r.Content,
		Published: r.published(),
		Author:    r.Author,
		Rating:    r.Rating,
		Likes:     likes,
		Comments:  r.Comments,
	}
}

func (r *PostRequest) ToUpdateDTO() *model.UpdatePostDTO {
	return &model.UpdatePostDTO{
		Title:     r.Title,
		Content:   r.Content,
		Published: r.published(),
	}
}

// NewValidator reports field errors under their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// bindPost decodes and validates the request body. The body must be exactly
// one JSON object. The returned details are nil when the body is acceptable.
func bindPost(c *gin.Context, validate *validator.Validate) (*PostRequest, []ErrorDetail) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, []ErrorDetail{{Loc: []any{"body"}, Msg: "Unable to read request body", Type: "json_invalid"}}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, []ErrorDetail{{Loc: []any{"body"}, Msg: "Field required", Type: "missing"}}
	}
	if !json.Valid(body) {
		return nil, []ErrorDetail{{Loc: []any{"body"}, Msg: "JSON decode error", Type: "json_invalid"}}
	}

	var req PostRequest
	if err := binding.JSON.BindBody(body, &req); err != nil {
		return nil, decodeErrorDetails(err)
	}
	if req.Published.null {
		return nil, []ErrorDetail{{Loc: []any{"body", "published"}, Msg: "Input should be a valid boolean", Type: "bool_type"}}
	}

	if err := validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, validationErrorDetails(fieldErrs)
		}
		return nil, []ErrorDetail{{Loc: []any{"body"}, Msg: err.Error(), Type: "value_error"}}
	}
	return &req, nil
}

// parseID reads the {id} path parameter.
func parseID(c *gin.Context) (int64, []ErrorDetail) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, []ErrorDetail{{
			Loc:   []any{"path", "id"},
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Type:  "int_parsing",
			Input: raw,
		}}
	}
	return id, nil
}

func decodeErrorDetails(err error) []ErrorDetail {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return []ErrorDetail{{Loc: []any{"body"}, Msg: "JSON decode error", Type: "json_invalid"}}
	}
	if typeErr.Field == "" {
		return []ErrorDetail{{
			Loc:  []any{"body"},
			Msg:  "Input should be a valid dictionary or object to extract fields from",
			Type: "model_attributes_type",
		}}
	}

	loc := []any{"body"}
	for _, part := range strings.Split(typeErr.Field, ".") {
		loc = append(loc, part)
	}
	name, kind := jsonTypeName(typeErr.Type)
	return []ErrorDetail{{Loc: loc, Msg: "Input should be a valid " + name, Type: kind + "_type"}}
}

func jsonTypeName(t reflect.Type) (name, kind string) {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean", "bool"
	case reflect.String:
		return "string", "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer", "int"
	case reflect.Float32, reflect.Float64:
		return "number", "float"
	case reflect.Slice, reflect.Array:
		return "list", "list"
	default:
		return "object", "model_attributes"
	}
}

func validationErrorDetails(fieldErrs validator.ValidationErrors) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		detail := ErrorDetail{Loc: []any{"body", fe.Field()}}
		switch fe.Tag() {
		case "required":
			detail.Msg = "Field required"
			detail.Type = "missing"
		case "gte":
			detail.Msg = "Input should be greater than or equal to " + fe.Param()
			detail.Type = "greater_than_equal"
			detail.Input = fe.Value()
		default:
			detail.Msg = fe.Error()
			detail.Type = "value_error"
		}
		details = append(details, detail)
	}
	return details
}
