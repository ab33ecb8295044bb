package center

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockBedRepo) {
	svc, _, _, beds := newTestService()
	return NewHandler(svc), beds
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, path, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateCenterHandler(t *testing.T) {
	h, _ := newTestHandler()

	rec := doRequest(t, h.CreateCenter, http.MethodPost, "/centers",
		`{"name":"Riverside","capacity":10}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got Center
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.ID == uuid.Nil || got.Name != "Riverside" {
		t.Errorf("unexpected center: %+v", got)
	}
}

func TestCreateCenterHandler_Validation(t *testing.T) {
	h, _ := newTestHandler()

	rec := doRequest(t, h.CreateCenter, http.MethodPost, "/centers",
		`{"name":"","capacity":10}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetCenterHandler_NotFound(t *testing.T) {
	h, _ := newTestHandler()

	rec := doRequest(t, h.GetCenter, http.MethodGet, "/centers/x", "",
		map[string]string{"id": uuid.New().String()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, h.GetCenter, http.MethodGet, "/centers/x", "",
		map[string]string{"id": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpsertHoursHandler(t *testing.T) {
	h, _ := newTestHandler()

	rec := doRequest(t, h.CreateCenter, http.MethodPost, "/centers",
		`{"name":"Clinic","capacity":5}`, nil)
	var ctr Center
	if err := json.Unmarshal(rec.Body.Bytes(), &ctr); err != nil {
		t.Fatal(err)
	}

	rec = doRequest(t, h.UpsertHours, http.MethodPut, "/centers/x/hours",
		`[{"weekday":1,"open":"08:00","close":"17:00"}]`,
		map[string]string{"id": ctr.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h.ListHours, http.MethodGet, "/centers/x/hours", "",
		map[string]string{"id": ctr.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var hours []Hours
	if err := json.Unmarshal(rec.Body.Bytes(), &hours); err != nil {
		t.Fatal(err)
	}
	if len(hours) != 1 || hours[0].Open.String() != "08:00" {
		t.Errorf("unexpected hours: %+v", hours)
	}
}

func TestUpsertHoursHandler_EmptyBody(t *testing.T) {
	h, _ := newTestHandler()
	rec := doRequest(t, h.UpsertHours, http.MethodPut, "/centers/x/hours", `[]`,
		map[string]string{"id": uuid.New().String()})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteBedHandler_Referenced(t *testing.T) {
	h, beds := newTestHandler()

	rec := doRequest(t, h.CreateCenter, http.MethodPost, "/centers",
		`{"name":"Clinic","capacity":5}`, nil)
	var ctr Center
	if err := json.Unmarshal(rec.Body.Bytes(), &ctr); err != nil {
		t.Fatal(err)
	}

	rec = doRequest(t, h.CreateBed, http.MethodPost, "/centers/x/beds",
		`{"code":"B1"}`, map[string]string{"id": ctr.ID.String()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var bed Bed
	if err := json.Unmarshal(rec.Body.Bytes(), &bed); err != nil {
		t.Fatal(err)
	}

	beds.referenced[bed.ID] = true
	rec = doRequest(t, h.DeleteBed, http.MethodDelete, "/beds/x", "",
		map[string]string{"id": bed.ID.String()})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	delete(beds.referenced, bed.ID)
	rec = doRequest(t, h.DeleteBed, http.MethodDelete, "/beds/x", "",
		map[string]string{"id": bed.ID.String()})
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
