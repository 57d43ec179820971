// handlers/respond.go
package handlers

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"trophy-progression-system/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ExposeErrorDetail attaches the cause of internal errors to responses. Off in production.
var ExposeErrorDetail bool

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondError(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	body := fiber.Map{"error": services.PublicMessage(err)}
	if kind == services.KindInternal {
		log.Printf("❌ [%s %s] %v", c.Method(), c.Path(), err)
		if ExposeErrorDetail {
			body["cause"] = err.Error()
		}
	}
	return c.Status(kind.HTTPStatus()).JSON(body)
}

// parseBody decodes the JSON body into out and runs its validate tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return services.BadRequest("invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return services.BadRequest(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
