// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"math"
	"mime"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/itsatony/w4b_v3/server/coldrelay/api/middleware"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/models"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/service"
	nuts "github.com/vaudience/go-nuts"
)

const (
	msgStored      = "Dados gravados com sucesso"
	msgStoreFailed = "Falha ao salvar no banco"
)

// RegistrarAck is the body returned after a pushed reading was stored
type RegistrarAck struct {
	Status   string `json:"status"`
	Mensagem string `json:"mensagem"`
}

// RegistrarFailure is the generic body returned when a push could not be stored
type RegistrarFailure struct {
	Erro string `json:"erro"`
}

var formDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(float64(0), convertFiniteFloat)
	return d
}()

// convertFiniteFloat accepts the same numbers a JSON body can carry; NaN and
// the infinities are rejected.
func convertFiniteFloat(value string) reflect.Value {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return reflect.Value{}
	}
	return reflect.ValueOf(f)
}

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	service       service.ReadingService
	strictListing bool
}

// @Summary Push a reading
// @Description Store one reading pushed by a receiver device
// @Tags readings
// @Accept json
// @Accept x-www-form-urlencoded
// @Produce json
// @Param reading body models.ReadingInput true "Reading"
// @Success 200 {object} RegistrarAck
// @Failure 500 {object} RegistrarFailure
// @Router /api/registrar [post]
func (h *ReadingHandlers) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFrom(r.Context())

	input, err := decodeReadingInput(r)
	if err != nil {
		nuts.L.Errorf("[API] %s: undecodable reading: %v", requestID, err)
		respondWithJSON(w, http.StatusInternalServerError, RegistrarFailure{Erro: msgStoreFailed})
		return
	}

	if err := h.service.InsertReading(r.Context(), service.OriginPush, input); err != nil {
		nuts.L.Errorf("[API] %s: failed to store reading: %v", requestID, err)
		respondWithJSON(w, http.StatusInternalServerError, RegistrarFailure{Erro: msgStoreFailed})
		return
	}

	respondWithJSON(w, http.StatusOK, RegistrarAck{Status: "ok", Mensagem: msgStored})
}

// @Summary List readings
// @Description Return every stored reading; 204 when there is nothing to return
// @Tags readings
// @Produce json
// @Success 200 {array} models.Reading
// @Success 204
// @Failure 503 {object} errors.APIError
// @Router / [get]
func (h *ReadingHandlers) List(w http.ResponseWriter, r *http.Request) {
	var readings []models.Reading
	if h.strictListing {
		var err error
		readings, err = h.service.ListReadingsStrict(r.Context())
		if err != nil {
			requestID := middleware.RequestIDFrom(r.Context())
			respondWithError(w, errors.NewUnavailableError("failed to list readings", err).WithRequestID(requestID))
			return
		}
	} else {
		readings = h.service.ListReadings(r.Context())
	}

	if len(readings) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondWithJSON(w, http.StatusOK, readings)
}

func decodeReadingInput(r *http.Request) (models.ReadingInput, error) {
	var input models.ReadingInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return input, errors.NewValidationError("invalid form body", err)
		}
		if err := formDecoder.Decode(&input, r.PostForm); err != nil {
			return input, errors.NewValidationError("invalid form body", err)
		}
		return input, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, errors.NewValidationError("invalid request body", err)
	}
	return input, nil
}
