package Controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restokorp/restaurant-app/controllers"
	"github.com/restokorp/restaurant-app/hub"
	"github.com/restokorp/restaurant-app/models"
	"github.com/restokorp/restaurant-app/utils"
)

// The hub pushes booking events to every connected client regardless of
// role, so broadcast payloads carry the masked phone form only.
func TestBookingBroadcastHidesFullPhone(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	router := setupBookingRouter(db)
	router.GET("/ws", controllers.LiveHandler)

	srv := httptest.NewServer(router)
	defer srv.Close()

	clientsBefore := hub.ClientCount()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() > clientsBefore
	}, time.Second, 10*time.Millisecond)

	table := models.Table{Location: "terrace", Seats: 2, IsActive: true}
	require.NoError(t, db.Create(&table).Error)

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	w := doJSON(t, router, "POST", "/bookings", bookingPayload(table.ID, start, 2*time.Hour))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var createResp struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	payload := string(msg)
	assert.Contains(t, payload, `"event":"booking_create"`)
	assert.Contains(t, payload, `"phone_last_four":"6789"`)
	assert.NotContains(t, payload, "9123456789")
	assert.NotContains(t, payload, "client_phone")

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/bookings/%d", createResp.Data.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)

	payload = string(msg)
	assert.Contains(t, payload, `"event":"booking_cancel"`)
	assert.NotContains(t, payload, "9123456789")
	assert.NotContains(t, payload, "client_phone")
}
