package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"batiflow/internal/services"
	"batiflow/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restreindre aux origines du front en production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientWS est une connexion websocket d'un utilisateur
type ClientWS struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub tient le registre des connexions et diffuse les événements. Un canal
// par utilisateur : les événements d'un tenant ne sortent jamais de son
// périmètre.
type Hub struct {
	Clients      map[*ClientWS]bool
	Register     chan *ClientWS
	Unregister   chan *ClientWS
	UserChannels map[string]map[*ClientWS]bool

	mutex sync.RWMutex
}

// EvenementWS est le message poussé au front
type EvenementWS struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Types d'événements du pipeline
const (
	EvenementConnexion  = "connexion"
	EvenementTransition = "transition_statut"
	EvenementKanban     = "kanban_deplace"
	EvenementSignature  = "devis_signe"
	EvenementPing       = "ping"
	EvenementPong       = "pong"
)

var wsHub *Hub

// InitWebSocketHub démarre le hub global
func InitWebSocketHub() {
	wsHub = &Hub{
		Clients:      make(map[*ClientWS]bool),
		Register:     make(chan *ClientWS),
		Unregister:   make(chan *ClientWS),
		UserChannels: make(map[string]map[*ClientWS]bool),
	}
	go wsHub.Run()
}

// Run fait tourner la boucle d'enregistrement du hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.Clients[client] = true
			if h.UserChannels[client.UserID] == nil {
				h.UserChannels[client.UserID] = make(map[*ClientWS]bool)
			}
			h.UserChannels[client.UserID][client] = true
			h.mutex.Unlock()

			log.Printf("[WEBSOCKET] Client %s connecté (utilisateur %s)", client.ID, client.UserID)

			message := EvenementWS{
				Type:      EvenementConnexion,
				Data:      map[string]string{"status": "connecte"},
				Timestamp: time.Now(),
			}
			if data, err := json.Marshal(message); err == nil {
				select {
				case client.Send <- data:
				default:
				}
			}

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				if userClients, exists := h.UserChannels[client.UserID]; exists {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.UserChannels, client.UserID)
					}
				}
				close(client.Send)
				log.Printf("[WEBSOCKET] Client %s déconnecté (utilisateur %s)", client.ID, client.UserID)
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToUser pousse un événement à toutes les connexions d'un
// utilisateur
func (h *Hub) BroadcastToUser(userID string, message EvenementWS) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WEBSOCKET] Erreur de sérialisation: %v", err)
		return
	}

	h.mutex.RLock()
	userClients, exists := h.UserChannels[userID]
	h.mutex.RUnlock()

	if !exists {
		return
	}

	for client := range userClients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			h.mutex.Lock()
			delete(h.Clients, client)
			delete(userClients, client)
			h.mutex.Unlock()
		}
	}
}

// BroadcastEvenementPipeline diffuse un événement de pipeline au tenant.
// Sans hub démarré (tests, commandes hors serveur), no-op.
func BroadcastEvenementPipeline(userID string, evenement string, data interface{}) {
	if wsHub == nil {
		return
	}
	wsHub.BroadcastToUser(userID, EvenementWS{
		Type:      evenement,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// NewWebSocketHandler authentifie la connexion (token en query ou header)
// puis bascule en websocket.
func NewWebSocketHandler(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.ValidateJWTFromHeader(c, authService)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WEBSOCKET] Échec de l'upgrade: %v", err)
			return
		}

		client := &ClientWS{
			ID:     uuid.New().String(),
			UserID: userID,
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Hub:    wsHub,
		}

		client.Hub.Register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump lit les messages entrants ; seul le ping est traité côté serveur
func (c *ClientWS) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WEBSOCKET] Erreur de lecture: %v", err)
			}
			break
		}

		var evenement EvenementWS
		if err := json.Unmarshal(message, &evenement); err != nil {
			continue
		}

		if evenement.Type == EvenementPing {
			pong := EvenementWS{
				Type:      EvenementPong,
				Data:      map[string]string{"status": "pong"},
				Timestamp: time.Now(),
			}
			if data, err := json.Marshal(pong); err == nil {
				select {
				case c.Send <- data:
				default:
					return
				}
			}
		}
	}
}

// writePump pousse les messages sortants et entretient le keepalive
func (c *ClientWS) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
