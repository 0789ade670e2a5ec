package run

import (
	"errors"
	"net/http"

	"github.com/devmeet/devmeet/internal/infrastructure/json"
	"github.com/devmeet/devmeet/internal/infrastructure/logging"
	"github.com/devmeet/devmeet/internal/infrastructure/validate"
	"github.com/devmeet/devmeet/internal/runner"
)

var languageValidator = validate.Field("language", validate.Compose(
	validate.Required(),
	validate.OneOf(runner.LanguageJavaScript, runner.LanguageCPP),
))

type Handler struct {
	service *runner.Service
	logger  logging.Logger
}

func NewHandler(service *runner.Service, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RunCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if req.Code == "" {
		json.WriteBadRequestError(w, "Code and language are required")
		return
	}
	if err := languageValidator(req.Language); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	result, err := h.service.Run(r.Context(), runner.Request{
		Code:     req.Code,
		Language: req.Language,
		Stdin:    req.Input,
	})
	if err != nil {
		if errors.Is(err, runner.ErrUnsupportedLanguage) {
			json.WriteBadRequestError(w, "Unsupported language")
			return
		}
		h.logger.Errorf("runner failed: %v", err)
		json.WriteInternalError(w, err)
		return
	}

	if result.ExitCode != 0 {
		message := result.Stderr
		if message == "" {
			message = "execution failed"
		}
		json.WriteBadRequestError(w, message)
		return
	}

	json.Write(w, http.StatusOK, runResponse{Output: result.Stdout})
}
