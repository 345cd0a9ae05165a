package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wayfare/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/items", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantOffset int
	}{
		{"Defaults", "/items", 20, 0},
		{"Explicit", "/items?limit=5&offset=10", 5, 10},
		{"Clamped To Max", "/items?limit=5000", maxPaginationLimit, 0},
		{"Negative Falls Back", "/items?limit=-1&offset=-3", 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.wantLimit, got.Limit)
			assert.Equal(t, tt.wantOffset, got.Offset)
		})
	}
}

func TestParseIDRejectsBadInput(t *testing.T) {
	app := fiber.New()
	s := &Server{}
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{"Valid", "/things/42", http.StatusOK},
		{"Zero", "/things/0", http.StatusBadRequest},
		{"Negative", "/things/-5", http.StatusBadRequest},
		{"Non Numeric", "/things/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "poll index", humanizeParam("pollIndex"))
	assert.Equal(t, "kind", humanizeParam("kind"))
}

func TestJoinStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, joinStatusCode(service.JoinStatusJoined))
	assert.Equal(t, http.StatusOK, joinStatusCode(service.JoinStatusAlreadyJoined))
	assert.Equal(t, http.StatusConflict, joinStatusCode(service.JoinStatusCapacityExceeded))
	assert.Equal(t, http.StatusUnprocessableEntity, joinStatusCode(service.JoinStatusRequirementsNotMet))
}
