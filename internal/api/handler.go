package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fee-desk/internal/config"
	"fee-desk/internal/excel"
	"fee-desk/internal/logger"
	"fee-desk/internal/model"
	"fee-desk/internal/queue"
	"fee-desk/internal/roster"
	feeerrors "fee-desk/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	roster     *roster.Roster
	queue      *queue.Queue
	dispatcher *queue.Dispatcher
	converter  excel.ParsingStrategy
	cfg        *config.Config
	log        zerolog.Logger
}

func NewHandler(
	students *roster.Roster,
	q *queue.Queue,
	dispatcher *queue.Dispatcher,
	cfg *config.Config,
) *Handler {
	h := &Handler{
		queue:      q,
		dispatcher: dispatcher,
		converter:  excel.NewExcelStrategy(),
		cfg:        cfg,
		log:        logger.Component("api"),
	}
	h.roster = students.WithHook(h.onLookup)
	return h
}

func (h *Handler) onLookup(admissionNo string, found bool) {
	h.log.Debug().Str("admission_no", admissionNo).Bool("found", found).Msg("Roster lookup")
}

func (h *Handler) GetStudent(c *gin.Context) {
	student, ok := h.roster.Find(c.Param("admission_no"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Student not found",
			Code:  "STUDENT_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, student)
}

func (h *Handler) CreatePayment(c *gin.Context) {
	var req model.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := validatePayment(req); err != nil {
		var ve feeerrors.ValidationError
		errors.As(err, &ve)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ve.Message,
			Code:  "VALIDATION_FAILED",
		})
		return
	}

	student, ok := h.roster.Find(req.AdmissionNo)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Student not found",
			Code:  "STUDENT_NOT_FOUND",
		})
		return
	}

	item, err := h.queue.Enqueue(model.SubmissionPayload{
		AdmissionNo: student.AdmissionNo,
		Name:        student.Name,
		Class:       student.Class,
		Amount:      strings.TrimSpace(req.Amount),
	})
	if err != nil {
		if errors.Is(err, feeerrors.ErrQueueFull) {
			h.log.Warn().Err(err).Str("admission_no", student.AdmissionNo).Msg("Submission refused")
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "Too many payments waiting to be sent, try again shortly",
				Code:  "QUEUE_FULL",
			})
			return
		}
		h.log.Error().Err(err).Msg("Failed to enqueue submission")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	h.log.Info().
		Str("item_id", item.ID).
		Str("admission_no", item.AdmissionNo).
		Str("amount", item.Amount).
		Msg("Submission enqueued")

	c.JSON(http.StatusAccepted, item)
}

func validatePayment(req model.PaymentRequest) error {
	if strings.TrimSpace(req.AdmissionNo) == "" {
		return feeerrors.ValidationError{
			Field:   "admissionNo",
			Value:   req.AdmissionNo,
			Message: "Please select a student first",
		}
	}
	if strings.TrimSpace(req.Amount) == "" {
		return feeerrors.ValidationError{
			Field:   "amount",
			Value:   req.Amount,
			Message: "Please enter an amount",
		}
	}
	return nil
}

func (h *Handler) ListPayments(c *gin.Context) {
	c.JSON(http.StatusOK, model.QueueResponse{
		Items:    h.queue.Snapshot(),
		Stats:    h.queue.Stats(),
		InFlight: h.dispatcher.InFlight(),
	})
}

func (h *Handler) GetPayment(c *gin.Context) {
	item, ok := h.queue.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Submission not found",
			Code:  "SUBMISSION_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// ConvertRoster turns an uploaded fee register into converted_data.json.
func (h *Handler) ConvertRoster(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Please upload a spreadsheet in the 'file' field",
			Code:  "INVALID_REQUEST",
		})
		return
	}
	if h.cfg.Server.MaxUploadBytes > 0 && fileHeader.Size > h.cfg.Server.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "File is too large",
			Code:  "FILE_TOO_LARGE",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to open upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	ctx := c.Request.Context()
	log := h.log.With().Str("filename", fileHeader.Filename).Logger()

	rows, err := h.converter.Parse(ctx, data)
	if err != nil {
		log.Warn().Err(err).Msg("Roster conversion failed")
		code := "CONVERSION_FAILED"
		if errors.Is(err, feeerrors.ErrHeaderNotFound) {
			code = "HEADER_NOT_FOUND"
		} else if errors.Is(err, feeerrors.ErrInvalidFileFormat) {
			code = "INVALID_FILE_FORMAT"
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
		return
	}

	problems := h.converter.Validate(ctx, rows)
	for _, p := range problems {
		log.Warn().Err(p).Msg("Roster row problem")
	}

	out, err := excel.MarshalRoster(rows)
	if err != nil {
		log.Error().Err(err).Msg("Failed to render roster")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	log.Info().Int("rows", len(rows)).Int("problems", len(problems)).Msg("Roster converted")

	c.Header("Content-Disposition", `attachment; filename="`+excel.OutputFilename+`"`)
	c.Header("X-Roster-Rows", strconv.Itoa(len(rows)))
	c.Header("X-Roster-Problems", strconv.Itoa(len(problems)))
	c.Data(http.StatusOK, "application/json", out)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"service":             h.cfg.App.Name,
		"version":             h.cfg.App.Version,
		"roster_size":         h.roster.Len(),
		"endpoint_configured": strings.TrimSpace(h.cfg.Submission.EndpointURL) != "",
	})
}
