package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"checkup-reservation/internal/auth"
	"checkup-reservation/internal/domain"
	"checkup-reservation/internal/service"
	"checkup-reservation/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users        service.UserService
	reservations service.ReservationService
	rosters      service.RosterService
	tokens       *auth.Tokens
	logger       logrus.FieldLogger
}

// NewHandler builds the API handler. rosters may be nil when no export storage is configured.
func NewHandler(users service.UserService, reservations service.ReservationService, rosters service.RosterService, tokens *auth.Tokens, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	registerValidators()
	return &Handler{
		users:        users,
		reservations: reservations,
		rosters:      rosters,
		tokens:       tokens,
		logger:       logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), gin.CustomRecovery(h.handlePanic), corsMiddleware())
	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "not found")
	})

	api := router.Group("/api")
	{
		api.POST("/users/signup", h.signup)
		api.POST("/auth/login", h.login)

		api.POST("/reservations", h.createReservation)
		api.GET("/reservations/me", h.myReservations)
		api.GET("/reservations/available-slots", h.availableSlots)
		api.POST("/reservations/:id/cancel", h.cancelReservation)

		admin := api.Group("/admin", h.requireRole(domain.RoleAdmin))
		admin.POST("/rosters", h.exportRoster)
		admin.GET("/rosters", h.listRosters)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

type signupRequest struct {
	EmployeeNo string `json:"employeeNo" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type loginRequest struct {
	EmployeeNo string `json:"employeeNo" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type createReservationRequest struct {
	EmployeeNo  string `json:"employeeNo" binding:"required"`
	CheckupDate string `json:"checkupDate" binding:"required,checkupdate"`
	TimeSlot    string `json:"timeSlot" binding:"required,timeslot"`
}

type createReservationResponse struct {
	ID int64 `json:"id"`
}

type ReservationResponse struct {
	ReservationID int64  `json:"reservationId"`
	CheckupDate   string `json:"checkupDate"`
	TimeSlot      string `json:"timeSlot"`
	Status        string `json:"status"`
}

type RosterExportResponse struct {
	Location string `json:"location"`
	URL      string `json:"url"`
	Entries  int    `json:"entries"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	if _, err := h.users.Signup(c.Request.Context(), req.EmployeeNo, req.Name, req.Email, req.Password); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.EmployeeNo, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	token, _, err := h.tokens.Issue(user)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Authorization", "Bearer "+token)
	c.Status(http.StatusOK)
}

func (h *Handler) createReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, bindingMessage(err))
		return
	}

	id, err := h.reservations.Create(c.Request.Context(), req.EmployeeNo, req.CheckupDate, req.TimeSlot)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, createReservationResponse{ID: id})
}

func (h *Handler) myReservations(c *gin.Context) {
	employeeNo, ok := requiredQuery(c, "employeeNo")
	if !ok {
		return
	}

	views, err := h.reservations.ListMine(c.Request.Context(), employeeNo)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ReservationResponse, len(views))
	for i, v := range views {
		resp[i] = ReservationResponse{
			ReservationID: v.ID,
			CheckupDate:   v.CheckupDate,
			TimeSlot:      v.TimeSlot,
			Status:        v.Status,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) cancelReservation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "invalid reservation id")
		return
	}
	employeeNo, ok := requiredQuery(c, "employeeNo")
	if !ok {
		return
	}

	if err := h.reservations.Cancel(c.Request.Context(), id, employeeNo); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) availableSlots(c *gin.Context) {
	date, ok := requiredQuery(c, "date")
	if !ok {
		return
	}

	slots, err := h.reservations.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *Handler) exportRoster(c *gin.Context) {
	if h.rosters == nil {
		abortWithError(c, http.StatusServiceUnavailable, "roster export is not configured")
		return
	}
	date, ok := requiredQuery(c, "date")
	if !ok {
		return
	}

	export, err := h.rosters.Export(c.Request.Context(), date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"date":     date,
		"location": export.Location,
		"entries":  export.Entries,
		"by":       claimsFrom(c).Subject,
	}).Info("roster exported")
	c.JSON(http.StatusOK, RosterExportResponse{
		Location: export.Location,
		URL:      export.URL,
		Entries:  export.Entries,
	})
}

func (h *Handler) listRosters(c *gin.Context) {
	if h.rosters == nil {
		abortWithError(c, http.StatusServiceUnavailable, "roster export is not configured")
		return
	}
	date, ok := requiredQuery(c, "date")
	if !ok {
		return
	}

	objects, err := h.rosters.List(c.Request.Context(), date)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}

func requiredQuery(c *gin.Context, name string) (string, bool) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		abortWithError(c, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return value, true
}
