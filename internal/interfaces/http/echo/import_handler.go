package echo

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/padron-import/internal/application/member"
	domain "github.com/mohammadpnp/padron-import/internal/domain/member"
)

const (
	uploadField       = "file"
	submittedByHeader = "X-Submitted-By"
)

type ImportHandler struct {
	service app.ImportService
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type cancelResponse struct {
	JobID     string `json:"jobId"`
	Cancelled bool   `json:"cancelled"`
}

func NewImportHandler(service app.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

func (h *ImportHandler) StartImport(c echo.Context) error {
	upload, err := c.FormFile(uploadField)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "multipart field \"file\" is required",
		}})
	}
	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "uploaded file could not be read",
		}})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "uploaded file could not be read",
		}})
	}

	submittedBy := c.Request().Header.Get(submittedByHeader)
	if strings.TrimSpace(submittedBy) == "" {
		submittedBy = c.FormValue("submitted_by")
	}

	out, err := h.service.StartImport(c.Request().Context(), app.StartImportInput{
		Data:        data,
		SubmittedBy: submittedBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmptySubmitter):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "missing_submitter",
				Message: "X-Submitted-By header is required",
			}})
		case errors.Is(err, domain.ErrInvalidFileKind):
			return c.JSON(http.StatusUnsupportedMediaType, apiResponse{Error: &errorBody{
				Code:    "invalid_file_kind",
				Message: "file must be an .xlsx spreadsheet",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to start import job",
		}})
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

// GetStatus answers polls; unknown ids still get a status body, with 404.
func (h *ImportHandler) GetStatus(c echo.Context) error {
	status := h.service.GetStatus(c.Param("id"))
	if !status.Found {
		return c.JSON(http.StatusNotFound, apiResponse{Data: status})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: status})
}

func (h *ImportHandler) Cancel(c echo.Context) error {
	jobID := c.Param("id")
	if !h.service.GetStatus(jobID).Found {
		return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
			Code:    "not_found",
			Message: domain.ErrJobNotFound.Error(),
		}})
	}
	if !h.service.Cancel(jobID) {
		return c.JSON(http.StatusConflict, apiResponse{Error: &errorBody{
			Code:    "already_completed",
			Message: "import job has already completed",
		}})
	}
	return c.JSON(http.StatusAccepted, apiResponse{Data: cancelResponse{JobID: jobID, Cancelled: true}})
}
