package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dmolenda/achievehub/internal/database"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/dmolenda/achievehub/internal/storage"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type handlerFixture struct {
	app    *fiber.App
	db     *gorm.DB
	listID uuid.UUID
}

func setupAchievementApp(t *testing.T) handlerFixture {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	owner := models.App{ID: uuid.New(), OwnerID: uuid.New(), Title: "Game"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed app: %v", err)
	}
	list := models.AchievementList{ID: uuid.New(), AppID: owner.ID, Title: "Main"}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("seed list: %v", err)
	}

	images := storage.NewLocalStore(t.TempDir(), "/uploads/achievements")
	h := NewAchievementHandler(services.NewAchievementService(db), images)

	app := fiber.New()
	g := app.Group("/lists/:listId/achievements")
	g.Get("", h.List)
	g.Post("", h.Create)
	g.Put("", h.BulkReplace)
	g.Patch("/reorder", h.Reorder)
	g.Patch("/:id", h.Update)
	g.Delete("/:id", h.Delete)

	return handlerFixture{app: app, db: db, listID: list.ID}
}

func (fx handlerFixture) request(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := fx.app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, data
}

func (fx handlerFixture) create(t *testing.T, title string) models.Achievement {
	t.Helper()

	status, body := fx.request(t, "POST", "/lists/"+fx.listID.String()+"/achievements", fiber.Map{
		"title": title,
		"type":  models.AchievementTypeMilestone,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create %q: status = %d, body %s", title, status, body)
	}
	var ach models.Achievement
	if err := json.Unmarshal(body, &ach); err != nil {
		t.Fatalf("decode achievement: %v", err)
	}
	return ach
}

func (fx handlerFixture) listOrdered(t *testing.T) []models.Achievement {
	t.Helper()

	status, body := fx.request(t, "GET", "/lists/"+fx.listID.String()+"/achievements", nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: status = %d, body %s", status, body)
	}
	var achs []models.Achievement
	if err := json.Unmarshal(body, &achs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return achs
}

func TestAchievementFlow(t *testing.T) {
	fx := setupAchievementApp(t)

	a := fx.create(t, "a")
	b := fx.create(t, "b")
	c := fx.create(t, "c")

	achs := fx.listOrdered(t)
	if len(achs) != 3 || achs[0].ID != a.ID || achs[2].ID != c.ID {
		t.Fatalf("unexpected initial order: %+v", achs)
	}

	// PATCH with an order field moves the item and shifts its neighbors.
	status, body := fx.request(t, "PATCH",
		fmt.Sprintf("/lists/%s/achievements/%s", fx.listID, a.ID),
		fiber.Map{"order": 3})
	if status != fiber.StatusOK {
		t.Fatalf("move: status = %d, body %s", status, body)
	}

	achs = fx.listOrdered(t)
	wantIDs := []uuid.UUID{b.ID, c.ID, a.ID}
	for i, want := range wantIDs {
		if achs[i].ID != want {
			t.Fatalf("order after move: got %v", achs)
		}
		if achs[i].SortOrder != i+1 {
			t.Fatalf("rank at index %d = %d, want %d", i, achs[i].SortOrder, i+1)
		}
	}

	// Full permutation via the reorder endpoint.
	status, body = fx.request(t, "PATCH",
		"/lists/"+fx.listID.String()+"/achievements/reorder",
		fiber.Map{"orderedIds": []uuid.UUID{c.ID, a.ID, b.ID}})
	if status != fiber.StatusOK {
		t.Fatalf("reorder: status = %d, body %s", status, body)
	}

	achs = fx.listOrdered(t)
	if achs[0].ID != c.ID || achs[1].ID != a.ID || achs[2].ID != b.ID {
		t.Fatalf("order after reorder: %+v", achs)
	}

	// Deleting the middle item closes the gap.
	status, body = fx.request(t, "DELETE",
		fmt.Sprintf("/lists/%s/achievements/%s", fx.listID, a.ID), nil)
	if status != fiber.StatusOK {
		t.Fatalf("delete: status = %d, body %s", status, body)
	}

	achs = fx.listOrdered(t)
	if len(achs) != 2 || achs[0].SortOrder != 1 || achs[1].SortOrder != 2 {
		t.Fatalf("order after delete: %+v", achs)
	}
}

func TestAchievementValidationErrors(t *testing.T) {
	fx := setupAchievementApp(t)
	a := fx.create(t, "a")

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"create without title", "POST", "/lists/" + fx.listID.String() + "/achievements",
			fiber.Map{"type": "milestone"}, fiber.StatusBadRequest},
		{"create with bad type", "POST", "/lists/" + fx.listID.String() + "/achievements",
			fiber.Map{"title": "x", "type": "weekly"}, fiber.StatusBadRequest},
		{"bad list id", "GET", "/lists/not-a-uuid/achievements", nil, fiber.StatusBadRequest},
		{"unknown list", "GET", "/lists/" + uuid.New().String() + "/achievements", nil, fiber.StatusNotFound},
		{"reorder without array", "PATCH", "/lists/" + fx.listID.String() + "/achievements/reorder",
			fiber.Map{}, fiber.StatusBadRequest},
		{"bulk without array", "PUT", "/lists/" + fx.listID.String() + "/achievements",
			fiber.Map{}, fiber.StatusBadRequest},
		{"move out of range", "PATCH",
			fmt.Sprintf("/lists/%s/achievements/%s", fx.listID, a.ID),
			fiber.Map{"order": 9}, fiber.StatusBadRequest},
		{"unknown achievement", "DELETE",
			fmt.Sprintf("/lists/%s/achievements/%s", fx.listID, uuid.New()), nil, fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := fx.request(t, tc.method, tc.path, tc.body)
			if status != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", status, tc.want, body)
			}
		})
	}
}

func TestBulkReplaceEndpoint(t *testing.T) {
	fx := setupAchievementApp(t)
	a := fx.create(t, "a")

	status, body := fx.request(t, "PUT", "/lists/"+fx.listID.String()+"/achievements", fiber.Map{
		"achievements": []fiber.Map{
			{"_id": a.ID, "title": "a2", "type": "milestone", "order": 5},
			{"title": "fresh", "type": "progress", "progressGoal": 3},
		},
	})
	if status != fiber.StatusOK {
		t.Fatalf("bulk: status = %d, body %s", status, body)
	}

	var achs []models.Achievement
	if err := json.Unmarshal(body, &achs); err != nil {
		t.Fatalf("decode bulk response: %v", err)
	}
	if len(achs) != 2 {
		t.Fatalf("bulk returned %d items, want 2", len(achs))
	}
	for i, ach := range achs {
		if ach.SortOrder != i+1 {
			t.Fatalf("bulk response not normalized: %+v", achs)
		}
	}
	if achs[0].Title != "fresh" || achs[1].Title != "a2" {
		t.Fatalf("bulk order: got %s, %s", achs[0].Title, achs[1].Title)
	}
}
