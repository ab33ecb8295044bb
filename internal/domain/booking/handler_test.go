package booking

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func doRequest(t *testing.T, h echo.HandlerFunc, method, path, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
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

func TestClaimHandler(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	sessionID := f.addSession(nextMonday(), "09:00", "11:00", 2)
	bedID := f.addBed("B1")
	patientID := uuid.New()

	body := fmt.Sprintf(`{"session_id":%q,"bed_id":%q,"patient_id":%q}`,
		sessionID, bedID, patientID)
	rec := doRequest(t, h.Claim, http.MethodPost, "/appointments", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != StatusBooked || got.SessionID != sessionID {
		t.Errorf("unexpected appointment: %+v", got)
	}

	// Same bed again conflicts.
	rec = doRequest(t, h.Claim, http.MethodPost, "/appointments",
		fmt.Sprintf(`{"session_id":%q,"bed_id":%q,"patient_id":%q}`, sessionID, bedID, uuid.New()), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409, body %s", rec.Code, rec.Body.String())
	}
}

func TestClaimHandler_Errors(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	bedID := f.addBed("B1")

	rec := doRequest(t, h.Claim, http.MethodPost, "/appointments", `{"session_id":"nope"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h.Claim, http.MethodPost, "/appointments",
		fmt.Sprintf(`{"session_id":%q,"bed_id":%q,"patient_id":%q}`, uuid.New(), bedID, uuid.New()), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", rec.Code)
	}
}

func TestAvailableBedsHandler(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	sessionID := f.addSession(nextMonday(), "09:00", "11:00", 2)
	f.addBed("B1")
	f.addBed("B2")

	rec := doRequest(t, h.AvailableBeds, http.MethodGet, "/sessions/x/available-beds", "",
		map[string]string{"id": sessionID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var beds []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &beds); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(beds) != 2 {
		t.Errorf("expected 2 beds, got %d", len(beds))
	}

	rec = doRequest(t, h.AvailableBeds, http.MethodGet, "/sessions/x/available-beds", "",
		map[string]string{"id": "not-a-uuid"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestAdHocAvailabilityHandler(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	f.addBed("B1")
	monday := nextMonday()

	path := fmt.Sprintf("/availability?center_id=%s&date=%s&start=09:00&end=11:00",
		f.centerID, monday)
	rec := doRequest(t, h.AdHocAvailability, http.MethodGet, path, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h.AdHocAvailability, http.MethodGet, "/availability?center_id="+f.centerID.String(), "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: status = %d, want 400", rec.Code)
	}
}

func TestLifecycleHandlers(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	sessionID := f.addSession(nextMonday(), "09:00", "11:00", 2)
	bedID := f.addBed("B1")
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	a, err := f.svc.Claim(ctx, ClaimRequest{SessionID: sessionID, BedID: bedID, PatientID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	params := map[string]string{"id": a.ID.String()}

	rec := doRequest(t, h.Complete, http.MethodPost, "/appointments/x/complete", "", params)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Cancel after complete violates the lifecycle.
	rec = doRequest(t, h.Cancel, http.MethodPost, "/appointments/x/cancel", "", params)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("cancel after complete: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h.Cancel, http.MethodPost, "/appointments/x/cancel", "",
		map[string]string{"id": uuid.New().String()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestRescheduleHandler(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	monday := nextMonday()
	oldSession := f.addSession(monday, "09:00", "11:00", 2)
	newSession := f.addSession(monday.AddDays(1), "09:00", "11:00", 2)
	bedID := f.addBed("B1")
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	a, err := f.svc.Claim(ctx, ClaimRequest{SessionID: oldSession, BedID: bedID, PatientID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}

	body := fmt.Sprintf(`{"session_id":%q,"bed_id":%q}`, newSession, bedID)
	rec := doRequest(t, h.Reschedule, http.MethodPost, "/appointments/x/reschedule", body,
		map[string]string{"id": a.ID.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var moved Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if moved.SessionID != newSession {
		t.Errorf("session = %s, want %s", moved.SessionID, newSession)
	}

	rec = doRequest(t, h.Reschedule, http.MethodPost, "/appointments/x/reschedule",
		`{"session_id":"","bed_id":""}`, map[string]string{"id": a.ID.String()})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty target: status = %d, want 400", rec.Code)
	}
}

func TestListAppointmentsHandler(t *testing.T) {
	f := newFixture(Config{AllowSameDay: true})
	h := NewHandler(f.svc)
	sessionID := f.addSession(nextMonday(), "09:00", "11:00", 2)
	bedID := f.addBed("B1")
	patientID := uuid.New()
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	if _, err := f.svc.Claim(ctx, ClaimRequest{SessionID: sessionID, BedID: bedID, PatientID: patientID}); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, h.ListAppointments, http.MethodGet, "/appointments?patient_id="+patientID.String(), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data  []Appointment `json:"data"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Errorf("total = %d, len = %d, want 1/1", resp.Total, len(resp.Data))
	}

	rec = doRequest(t, h.ListAppointments, http.MethodGet, "/appointments?patient_id="+uuid.NewString(), "", nil)
	var empty struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil {
		t.Fatal(err)
	}
	if empty.Total != 0 {
		t.Errorf("total = %d, want 0", empty.Total)
	}
}
