package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "rid-1")
	Success(c, 0, map[string]string{"id": "x"}, "ok", nil)

	var body APIResponse[map[string]string]
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || !body.Success || body.Data["id"] != "x" || body.RequestID != "rid-1" {
		t.Fatalf("success envelope: %d %+v", w.Code, body)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error[any](c, http.StatusConflict, "Username already exists", nil)
	var errBody APIResponse[any]
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusConflict || errBody.Success || errBody.Message != "Username already exists" {
		t.Fatalf("error envelope: %d %+v", w.Code, errBody)
	}
	if !c.IsAborted() {
		t.Fatal("error should abort the chain")
	}
}
