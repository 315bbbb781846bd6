//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func TestAuth_RegisterLoginRefreshLogout(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.AGHealthURL, 60*time.Second)

	client := NewSessionClient(t)
	username := RandUsername("it-auth")
	creds := MustJSON(t, map[string]string{"username": username, "password": "supersecret"})

	// register
	regBody := DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/register", "", creds, 200)
	var reg tokenResp
	if err := json.Unmarshal(regBody, &reg); err != nil {
		t.Fatalf("unmarshal register: %v body=%s", err, string(regBody))
	}
	if reg.AccessToken == "" || reg.TokenType != "bearer" {
		t.Fatalf("register: bad token response %+v", reg)
	}

	// duplicate register is rejected
	DoJSON(t, NewSessionClient(t), http.MethodPost, cfg.AGBaseURL+"/api/auth/register", "", creds, 401)

	// login replaces the session
	loginBody := DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/login", "", creds, 200)
	var login tokenResp
	if err := json.Unmarshal(loginBody, &login); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}

	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()
	if n := CountSessions(t, db, username); n != 1 {
		t.Fatalf("want exactly 1 session after login, got %d", n)
	}

	// refresh rotates the cookie and mints a new access token
	refBody := DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/refresh", "", nil, 200)
	var ref tokenResp
	if err := json.Unmarshal(refBody, &ref); err != nil {
		t.Fatalf("unmarshal refresh: %v", err)
	}
	if ref.AccessToken == "" {
		t.Fatal("refresh: empty access token")
	}

	// logout revokes the session
	DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/logout", "", nil, 200)
	if n := CountSessions(t, db, username); n != 0 {
		t.Fatalf("want 0 sessions after logout, got %d", n)
	}

	// the cleared cookie no longer refreshes
	DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/refresh", "", nil, 401)
}

func TestProxy_GoodsThroughGateway(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.AGHealthURL, 60*time.Second)
	WaitHealthz(t, cfg.GoodsHealth, 60*time.Second)

	client := NewSessionClient(t)
	creds := MustJSON(t, map[string]string{"username": RandUsername("it-goods"), "password": "supersecret"})

	regBody := DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/auth/register", "", creds, 200)
	var reg tokenResp
	if err := json.Unmarshal(regBody, &reg); err != nil {
		t.Fatalf("unmarshal register: %v", err)
	}

	// anonymous writes are rejected downstream
	product := MustJSON(t, map[string]any{"name": "Lamp", "description": "warm", "price": 19.99, "image_url": ""})
	DoJSON(t, NewSessionClient(t), http.MethodPost, cfg.AGBaseURL+"/api/goods/products", "", product, 401)

	// authenticated create lands with the verified identity
	createBody := DoJSON(t, client, http.MethodPost, cfg.AGBaseURL+"/api/goods/products", reg.AccessToken, product, 200)
	var created struct {
		ID     int64 `json:"id"`
		UserID int64 `json:"user_id"`
	}
	if err := json.Unmarshal(createBody, &created); err != nil {
		t.Fatalf("unmarshal product: %v body=%s", err, string(createBody))
	}
	if created.ID == 0 || created.UserID == 0 {
		t.Fatalf("product: bad create response %+v", created)
	}

	// public reads go through anonymously
	DoJSON(t, NewSessionClient(t), http.MethodGet, cfg.AGBaseURL+"/api/goods/products", "", nil, 200)

	// unknown service name is refused at the gateway
	DoJSON(t, client, http.MethodGet, cfg.AGBaseURL+"/api/nothere/items", "", nil, 404)
}
