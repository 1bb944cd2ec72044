package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	keydomain "github.com/smallbiznis/keyforge/internal/key/domain"
)

type createKeyRequest struct {
	KeyValue         string    `json:"keyValue"`
	MachineID        string    `json:"machineId"`
	ExpiryDate       time.Time `json:"expiryDate"`
	KeyType          string    `json:"keyType"`
	CustomerTelegram string    `json:"customerTelegram"`
	Price            float64   `json:"price"`
}

func (s *Server) CreateKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	_, err := s.keySvc.Create(c.Request.Context(), keydomain.CreateKeyRequest{
		KeyValue:         strings.TrimSpace(req.KeyValue),
		MachineID:        strings.TrimSpace(req.MachineID),
		ExpiryDate:       req.ExpiryDate,
		KeyType:          strings.TrimSpace(req.KeyType),
		CustomerTelegram: strings.TrimSpace(req.CustomerTelegram),
		Price:            req.Price,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Message: "Key created successfully",
	})
}

// ValidateKey answers with a bare JSON boolean; an unknown or unusable key is
// a false, not an error.
func (s *Server) ValidateKey(c *gin.Context) {
	ok, err := s.keySvc.Validate(c.Request.Context(), keydomain.ValidateKeyRequest{
		KeyValue:  strings.TrimSpace(c.Query("key")),
		MachineID: strings.TrimSpace(c.Query("machineId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ok)
}

func (s *Server) GetKeyInfo(c *gin.Context) {
	key, err := s.keySvc.GetByValue(c.Request.Context(), strings.TrimSpace(c.Query("key")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, key)
}

func (s *Server) DeactivateKey(c *gin.Context) {
	_, err := s.keySvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Query("key")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{
		Success: true,
		Message: "Key deactivated successfully",
	})
}

func (s *Server) GetUserKeys(c *gin.Context) {
	keys, err := s.keySvc.ListByCustomer(c.Request.Context(), strings.TrimSpace(c.Query("telegram")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, keys)
}

func (s *Server) GetKeyStats(c *gin.Context) {
	stats, err := s.keySvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) ListKeyTypes(c *gin.Context) {
	types, err := s.keySvc.ListTypes(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, types)
}
