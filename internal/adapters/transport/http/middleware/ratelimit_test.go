package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitPerIP_Basic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimitPerIP(1, 1, 100, time.Hour))
	r.GET("/", func(c *gin.Context) { c.String(200, "ok") })

	req := func(addr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.RemoteAddr = addr
		r.HandleContext(c)
		return w
	}

	if w := req("1.2.3.4:12345"); w.Code != 200 {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if w := req("1.2.3.4:12345"); w.Code != 429 {
		t.Fatalf("want 429, got %d", w.Code)
	}
}

func TestRateLimitPerIP_DifferentHosts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimitPerIP(1, 1, 100, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w1 := httptest.NewRecorder()
	c1, _ := gin.CreateTestContext(w1)
	c1.Request = httptest.NewRequest("GET", "/", nil)
	c1.Request.RemoteAddr = "10.0.0.1:1111"
	r.HandleContext(c1)
	if w1.Code != 200 {
		t.Fatalf("host A first request must pass, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest("GET", "/", nil)
	c2.Request.RemoteAddr = "10.0.0.2:2222"
	r.HandleContext(c2)
	if w2.Code != 200 {
		t.Fatalf("host B first request must pass independently, got %d", w2.Code)
	}
}
