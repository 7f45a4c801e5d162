package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/example/rentify/internal/apperrors"
	"github.com/example/rentify/internal/services"
)

var alphaSpacePattern = regexp.MustCompile(`^[A-Za-z ]+$`)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpacePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := parseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("notbeforetoday", func(fl validator.FieldLevel) bool {
		t, err := parseDate(fl.Field().String())
		if err != nil {
			return false
		}
		return services.NotBeforeDay(t, time.Now())
	})
	_ = v.RegisterValidation("notfutureyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().Year())
	})
	return v
}

func isStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// validateStruct returns a 400 describing the first failing field.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.BadRequest("Invalid request body")
	}
	return apperrors.BadRequest(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "alphaspace":
		return field + " can only contain alphabets"
	case "date":
		return field + " must be a valid ISO 8601 date string"
	case "strongpassword":
		return field + " must contain a lowercase letter, an uppercase letter, a number and a symbol"
	case "notbeforetoday":
		return field + " must be today or later"
	case "notfutureyear":
		return field + " must not be in the future"
	}
	return field + " is invalid"
}

// parseDate accepts ISO 8601 timestamps and plain dates. Values without an
// offset are read in the server's zone.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// bind parses the request body into dst and validates it.
func bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.BadRequest("Invalid request body")
	}
	return validateStruct(dst)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest(fmt.Sprintf("Validation failed (numeric string is expected) for %s", name))
	}
	return uint(id), nil
}

func queryID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest(name + " must be a positive integer")
	}
	return uint(id), nil
}

// formImage stores the multipart file in field, if any. It returns "" when
// the field is absent and required is false.
func formImage(c *fiber.Ctx, uploads services.Uploads, field string, required bool) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		if required {
			return "", apperrors.BadRequest(field + " is required")
		}
		return "", nil
	}
	return uploads.SaveImage(file)
}

// formImages stores every file of a multipart field. Already stored files
// are removed if a later one is rejected.
func formImages(c *fiber.Ctx, uploads services.Uploads, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.BadRequest(field + " is required")
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, apperrors.BadRequest(field + " is required")
	}
	if len(files) > services.MaxImagesPerUpload {
		return nil, apperrors.BadRequest(fmt.Sprintf("At most %d images can be uploaded at once", services.MaxImagesPerUpload))
	}
	return saveAll(uploads, files)
}

func saveAll(uploads services.Uploads, files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		name, err := uploads.SaveImage(f)
		if err != nil {
			for _, n := range names {
				uploads.Remove(n)
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
