package interview

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type InterviewType string

const (
	TypeStandard InterviewType = "STANDARD"
	TypeDepth    InterviewType = "DEPTH"
	TypeHR       InterviewType = "HR"
)

func ParseInterviewType(s string) (InterviewType, error) {
	switch t := InterviewType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeStandard, TypeDepth, TypeHR:
		return t, nil
	case "":
		return TypeStandard, nil
	default:
		return "", fmt.Errorf("unknown interview type %q", s)
	}
}

type Language string

const (
	LangKO Language = "KO"
	LangEN Language = "EN"
)

func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToUpper(strings.TrimSpace(s))); l {
	case LangKO, LangEN:
		return l, nil
	case "":
		return LangKO, nil
	default:
		return "", fmt.Errorf("unknown language %q", s)
	}
}

const (
	VisaCitizen           = "Australian Citizen"
	VisaPermanentResident = "Permanent Resident"
)

// VisaStatuses lists the accepted visa status values in display order.
var VisaStatuses = []string{
	VisaCitizen,
	VisaPermanentResident,
	"Partner / De facto",
	"International Student",
	"Working Holiday",
	"Temporary Skill Shortage (TSS)",
	"Others",
}

// NeedsVisaExpiry is false for statuses without an expiry date.
func NeedsVisaExpiry(status string) bool {
	return status != VisaCitizen && status != VisaPermanentResident
}

type BasicInfo struct {
	Name               string        `json:"name" validate:"required"`
	Position           string        `json:"position"`
	Store              string        `json:"store"`
	Date               string        `json:"date"`
	Interviewer        string        `json:"interviewer"`
	HasSushiExperience bool          `json:"hasSushiExperience"`
	VisaStatus         string        `json:"visaStatus,omitempty" validate:"omitempty,visa_status"`
	VisaExpiryDate     string        `json:"visaExpiryDate,omitempty"`
	Email              string        `json:"email,omitempty" validate:"omitempty,email"`
	Mobile             string        `json:"mobile,omitempty"`
	BirthDate          string        `json:"birthDate,omitempty"`
	InterviewType      InterviewType `json:"interviewType,omitempty" validate:"omitempty,oneof=STANDARD DEPTH HR"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("visa_status", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			for _, s := range VisaStatuses {
				if s == v {
					return true
				}
			}
			return false
		})
	})
	return validate
}

// Validate checks the field formats of a record about to be stored.
func (b BasicInfo) Validate() error {
	return getValidator().Struct(b)
}

// Resume is an attachment kept inline as a data URL.
type Resume struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
}

type Record struct {
	ID        string    `json:"id"`
	BasicInfo BasicInfo `json:"basicInfo"`
	Answers   Answers   `json:"answers"`
	Resume    *Resume   `json:"resume,omitempty"`
	AISummary string    `json:"aiSummary,omitempty"`
	// CreatedAt is epoch milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// Type returns the record's interview type, STANDARD when unset.
func (r Record) Type() InterviewType {
	if r.BasicInfo.InterviewType == "" {
		return TypeStandard
	}
	return r.BasicInfo.InterviewType
}
