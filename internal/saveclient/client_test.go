package saveclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oakhaven/contracts/internal/model"
)

func payload() *model.Contract {
	return &model.Contract{
		LocationID: "loc-1",
		NeedType:   model.NeedTypeAtNeed,
		People: []model.ContractPerson{
			{Roles: model.NewRoleSet(model.RolePrimaryBuyer), Name: model.PersonName{First: "John", Last: "Doe"}},
		},
	}
}

func TestSaveHappyPath(t *testing.T) {
	var validateBody model.Contract
	var commitPath, authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/contracts/validate":
			authHeader = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&validateBody); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case "/contracts/commit/tok-1":
			commitPath = r.URL.Path
			json.NewEncoder(w).Encode(model.Contract{ID: "c-1", ContractNumber: "FC-20240301-abc", LocationID: "loc-1"})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithAuthToken("jwt-1"))
	doc, err := c.Save(context.Background(), payload())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if doc.ID != "c-1" || doc.ContractNumber == "" {
		t.Fatalf("doc = %+v", doc)
	}
	if validateBody.LocationID != "loc-1" {
		t.Fatal("validate must receive the payload")
	}
	if commitPath == "" {
		t.Fatal("commit must be called with the issued token")
	}
	if authHeader != "Bearer jwt-1" {
		t.Fatalf("auth header = %q", authHeader)
	}
}

func TestValidationErrorsShortCircuit(t *testing.T) {
	commits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contracts/validate" {
			commits++
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]string{"people.primaryBeneficiary": "a primary beneficiary is required"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Save(context.Background(), payload())
	if err == nil {
		t.Fatal("rejected payload must error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.FieldErrors()["people.primaryBeneficiary"] == "" {
		t.Fatalf("fields = %v", apiErr.Fields)
	}
	if commits != 0 {
		t.Fatal("validation failure must not reach commit")
	}
}

func TestCommitFailureSurfacesVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/contracts/validate" {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "save token expired"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Save(context.Background(), payload())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "save token expired" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestValidateRequiresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Validate(context.Background(), payload()); err == nil {
		t.Fatal("empty token must be an error")
	}
}

func TestGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	doc, err := New(srv.URL).Get(context.Background(), "missing")
	if err != nil || doc != nil {
		t.Fatalf("doc = %v err = %v", doc, err)
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contracts/c-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(model.Contract{ID: "c-1", LocationID: "loc-1"})
	}))
	defer srv.Close()

	doc, err := New(srv.URL).Get(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc.ID != "c-1" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "c-1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Fatalf("message = %q", apiErr.Message)
	}
}
