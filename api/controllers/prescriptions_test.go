package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
)

type testPrescriptionsService struct {
	saveFn   func(ctx context.Context, customerID uuid.UUID, input prescriptions.SaveInput) (*prescriptions.Item, error)
	listFn   func(ctx context.Context, params prescriptions.ListParams) (*prescriptions.ListResult, error)
	getFn    func(ctx context.Context, customerID, id uuid.UUID) (*prescriptions.Item, error)
	deleteFn func(ctx context.Context, customerID, id uuid.UUID) error
}

func (s *testPrescriptionsService) Save(ctx context.Context, customerID uuid.UUID, input prescriptions.SaveInput) (*prescriptions.Item, error) {
	if s.saveFn != nil {
		return s.saveFn(ctx, customerID, input)
	}
	return nil, nil
}

func (s *testPrescriptionsService) List(ctx context.Context, params prescriptions.ListParams) (*prescriptions.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil
}

func (s *testPrescriptionsService) Get(ctx context.Context, customerID, id uuid.UUID) (*prescriptions.Item, error) {
	if s.getFn != nil {
		return s.getFn(ctx, customerID, id)
	}
	return nil, nil
}

func (s *testPrescriptionsService) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, customerID, id)
	}
	return nil
}

const prescriptionBody = `{
	"label": "  everyday pair  ",
	"prescription": {
		"right_eye": {"sphere": "-2.50", "cylinder": "-0.75", "axis": 90, "pd": "31"},
		"left_eye": {"sphere": "-2.25", "cylinder": "-0.50", "axis": 85, "pd": "31"},
		"total_pd": "62",
		"issue_date": "2026-05-01T00:00:00Z",
		"expiration_date": "2027-05-01T00:00:00Z"
	}
}`

func TestPrescriptionCreateTrimsLabelAndForwardsPayload(t *testing.T) {
	customerID := uuid.New()
	var gotInput prescriptions.SaveInput
	svc := &testPrescriptionsService{
		saveFn: func(ctx context.Context, cid uuid.UUID, input prescriptions.SaveInput) (*prescriptions.Item, error) {
			if cid != customerID {
				t.Fatalf("unexpected customer %s", cid)
			}
			gotInput = input
			return &prescriptions.Item{ID: uuid.New(), Label: input.Label, Prescription: input.Prescription}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions", strings.NewReader(prescriptionBody))
	req = withCustomer(req, customerID)
	resp := httptest.NewRecorder()

	PrescriptionCreate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.Label != "everyday pair" {
		t.Fatalf("expected trimmed label, got %q", gotInput.Label)
	}
	if !gotInput.Prescription.RightEye.Sphere.Equal(decimal.RequireFromString("-2.50")) {
		t.Fatalf("unexpected sphere %s", gotInput.Prescription.RightEye.Sphere)
	}
	if !gotInput.Prescription.TotalPD.Equal(decimal.RequireFromString("62")) {
		t.Fatalf("unexpected total pd %s", gotInput.Prescription.TotalPD)
	}
}

func TestPrescriptionCreateSurfacesValidationDetails(t *testing.T) {
	customerID := uuid.New()
	svc := &testPrescriptionsService{
		saveFn: func(ctx context.Context, cid uuid.UUID, input prescriptions.SaveInput) (*prescriptions.Item, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prescription failed validation").
				WithDetails([]lens.FieldError{{Field: "right_eye.sphere", Reason: "must be in 0.25 steps"}})
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions", strings.NewReader(prescriptionBody))
	req = withCustomer(req, customerID)
	resp := httptest.NewRecorder()

	PrescriptionCreate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if len(envelope.Error.Details) != 1 || envelope.Error.Details[0].Field != "right_eye.sphere" {
		t.Fatalf("unexpected details %v", envelope.Error.Details)
	}
}

func TestPrescriptionCreateRejectsMissingLabel(t *testing.T) {
	customerID := uuid.New()
	svc := &testPrescriptionsService{
		saveFn: func(ctx context.Context, cid uuid.UUID, input prescriptions.SaveInput) (*prescriptions.Item, error) {
			t.Fatal("service must not be called for invalid input")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prescriptions", strings.NewReader(`{"prescription":{}}`))
	req = withCustomer(req, customerID)
	resp := httptest.NewRecorder()

	PrescriptionCreate(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestPrescriptionListForwardsPagination(t *testing.T) {
	customerID := uuid.New()
	svc := &testPrescriptionsService{
		listFn: func(ctx context.Context, params prescriptions.ListParams) (*prescriptions.ListResult, error) {
			if params.CustomerID != customerID {
				t.Fatalf("unexpected customer %s", params.CustomerID)
			}
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if params.Cursor != "abc" {
				t.Fatalf("unexpected cursor %q", params.Cursor)
			}
			return &prescriptions.ListResult{
				Items: []prescriptions.Item{{
					ID:    uuid.New(),
					Label: "everyday pair",
					Prescription: lens.Prescription{
						TotalPD:        decimal.RequireFromString("62"),
						IssueDate:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
						ExpirationDate: time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC),
					},
				}},
				Cursor: "next",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions?limit=5&cursor=abc", nil)
	req = withCustomer(req, customerID)
	resp := httptest.NewRecorder()

	PrescriptionList(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Items  []prescriptionResponse `json:"items"`
			Cursor string                 `json:"cursor"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Items) != 1 || envelope.Data.Cursor != "next" {
		t.Fatalf("unexpected page %+v", envelope.Data)
	}
}

func TestPrescriptionDeleteMapsNotFound(t *testing.T) {
	customerID := uuid.New()
	prescriptionID := uuid.New()
	svc := &testPrescriptionsService{
		deleteFn: func(ctx context.Context, cid, id uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/prescriptions/"+prescriptionID.String(), nil)
	req = withCustomer(req, customerID)
	req = withURLParam(req, "prescriptionId", prescriptionID.String())
	resp := httptest.NewRecorder()

	PrescriptionDelete(svc, newTestLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
