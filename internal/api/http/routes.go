package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/stormstream/storm-assistant/internal/chat"
	"github.com/stormstream/storm-assistant/internal/extract"
	"github.com/stormstream/storm-assistant/internal/weather"
)

var validate = validator.New()

// chatRequest is the POST /chat body.
type chatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,uuid4"`
	Message   string `json:"message" validate:"required,min=1,max=2000"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, chatSvc *chat.Service, weatherSvc chat.WeatherFetcher) {
	v1 := app.Group("/api/v1")

	v1.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reply, err := chatSvc.SendMessage(c.Context(), req.SessionID, req.Message)
		if err != nil {
			// LLM-path failures abort the turn; the upstream message is the
			// failure reason shown to the user.
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}

		return c.JSON(reply)
	})

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		days, err := parseDays(c.Query("days"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Free text goes through the extractor first; a miss falls back to
		// treating the whole query as a place name.
		location := extract.Location(q)
		if location == "" {
			location = q
		}

		snapshot, err := weatherSvc.SnapshotFor(c.Context(), location, days)
		if err != nil {
			if errors.Is(err, weather.ErrLocationNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})
}

func parseDays(raw string) (int, error) {
	if raw == "" {
		return 0, nil // service default
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 10 {
		return 0, errors.New("days must be an integer between 1 and 10")
	}
	return days, nil
}
