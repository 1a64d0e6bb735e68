package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AngelCh415/meta-dashboard-go/internal/models"
)

// tagDateOrder is reported when a custom range ends before it starts.
const tagDateOrder = "dateorder"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(customPeriodOrder, models.CustomPeriod{})
	return v
}

func customPeriodOrder(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.CustomPeriod)
	start, err1 := time.Parse(isoDate, c.StartDate)
	end, err2 := time.Parse(isoDate, c.EndDate)
	if err1 == nil && err2 == nil && end.Before(start) {
		sl.ReportError(c.EndDate, "EndDate", "endDate", tagDateOrder, c.StartDate)
	}
}

// fieldRank fixes which problem is reported when several fields fail.
var fieldRank = map[string]int{
	"UserID":       0,
	"Period":       1,
	"AdAccountID":  2,
	"AccessToken":  3,
	"CustomPeriod": 4,
	"StartDate":    4,
	"EndDate":      4,
}

// Validate checks the request and reports the first problem in the order
// userId, period, adAccountId, accessToken, customPeriod. Credentials are only
// required when the service calls Meta itself.
func Validate(req models.MetricsRequest, needCredentials bool) *models.ErrorInfo {
	in := trimmed(req)
	var err error
	if needCredentials {
		err = validate.Struct(in)
	} else {
		err = validate.StructExcept(in, "AdAccountID", "AccessToken")
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &models.ErrorInfo{Code: models.ErrInternal, Message: "Erro ao validar requisição", Details: err.Error()}
	}
	first := verrs[0]
	for _, fe := range verrs[1:] {
		if fieldRank[fe.StructField()] < fieldRank[first.StructField()] {
			first = fe
		}
	}
	return errorFor(first)
}

// trimmed is the copy that gets validated: blanks count as missing, act_ is
// dropped, and customPeriod only matters for the custom period.
func trimmed(req models.MetricsRequest) models.MetricsRequest {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Period = strings.TrimSpace(req.Period)
	req.AdAccountID = AccountID(req.AdAccountID)
	req.AccessToken = strings.TrimSpace(req.AccessToken)
	if Period(req.Period) != PeriodCustom {
		req.CustomPeriod = nil
	}
	return req
}

func errorFor(fe validator.FieldError) *models.ErrorInfo {
	switch fe.StructField() {
	case "UserID":
		return &models.ErrorInfo{Code: models.ErrMissingUserID, Message: "userId é obrigatório"}
	case "Period":
		return &models.ErrorInfo{Code: models.ErrMissingPeriod, Message: "period é obrigatório"}
	case "AdAccountID":
		return &models.ErrorInfo{
			Code:    models.ErrMissingAdAccountID,
			Message: "adAccountId é obrigatório",
			Details: "Informe o ID da conta de anúncios da Meta.",
		}
	case "AccessToken":
		return &models.ErrorInfo{
			Code:    models.ErrMissingAccessToken,
			Message: "accessToken é obrigatório",
			Details: "Informe o token de acesso da Meta API.",
		}
	}
	if fe.Tag() == "required" || fe.Tag() == "required_if" {
		return &models.ErrorInfo{
			Code:    models.ErrMissingCustomPeriod,
			Message: "customPeriod é obrigatório quando period = custom",
		}
	}
	return &models.ErrorInfo{
		Code:    models.ErrMissingCustomPeriod,
		Message: "customPeriod inválido",
		Details: "Use startDate <= endDate no formato YYYY-MM-DD.",
	}
}

// AccountID strips the optional act_ prefix.
func AccountID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "act_")
}
