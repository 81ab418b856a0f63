package handler

import (
    "errors"
    "net/http"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/excursion-storefront/internal/apiclient"
)

// Validator plugs go-playground/validator into echo's c.Validate.
type Validator struct {
    v *validator.Validate
}

func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    // Report json names, not Go field names.
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

// Validate returns a KindValidation *apiclient.RequestError carrying the
// field list on failure, so local and backend validation look the same to
// the browser.
func (cv *Validator) Validate(i any) error {
    err := cv.v.Struct(i)
    if err == nil {
        return nil
    }
    var ves validator.ValidationErrors
    if !errors.As(err, &ves) {
        return &apiclient.RequestError{Kind: apiclient.KindOther, Status: http.StatusBadRequest, Message: msgInvalidBody, Err: err}
    }
    fields := make([]apiclient.FieldError, 0, len(ves))
    lines := make([]string, 0, len(ves))
    for _, fe := range ves {
        msg := fieldMessage(fe)
        fields = append(fields, apiclient.FieldError{Field: fe.Field(), Message: msg})
        lines = append(lines, msg)
    }
    return &apiclient.RequestError{
        Kind:    apiclient.KindValidation,
        Status:  http.StatusUnprocessableEntity,
        Message: strings.Join(lines, "\n"),
        Fields:  fields,
        Err:     err,
    }
}

// fieldMessage words a violated rule the way the backend's own validation
// messages read after translation.
func fieldMessage(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "Заполните обязательное поле: " + fe.Field()
    case "email":
        return "Некорректный email"
    case "e164":
        return "Некорректный номер телефона"
    case "min":
        return "Слишком короткое значение: " + fe.Field()
    case "max":
        return "Слишком длинное значение: " + fe.Field()
    case "gt", "gte":
        return "Значение должно быть больше: " + fe.Field()
    }
    return "Некорректное значение: " + fe.Field()
}

// bindValid binds the request into dst and validates it.  The returned
// error is ready for respondError.
func bindValid(c echo.Context, dst any) error {
    if err := c.Bind(dst); err != nil {
        return &apiclient.RequestError{Kind: apiclient.KindOther, Status: http.StatusBadRequest, Message: msgInvalidBody, Err: err}
    }
    return c.Validate(dst)
}
