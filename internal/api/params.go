package api

import (
	"errors"   // Unwrapping validator errors
	"net/http" // HTTP status codes
	"reflect"  // Struct tag lookup
	"strconv"  // Integer parsing
	"strings"  // Whitespace trimming

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Form mapping and struct validation
	"github.com/go-playground/validator/v10" // Validation errors
	"github.com/sirupsen/logrus"             // Structured logging
)

// Context keys filled once parameters are valid
const (
	walletIDKey       = "walletID"
	amountKey         = "amount"
	additionalInfoKey = "additionalInfo"
)

// Detail types and messages reported in 422 bodies
const (
	detailMissing       = "missing"
	detailGreaterThan   = "greater_than"
	detailLessThanEqual = "less_than_equal"
	detailIntParsing    = "int_parsing"
	detailTooLong       = "string_too_long"
	detailValueError    = "value_error"

	msgMissing    = "Field required"
	msgIntParsing = "Input should be a valid integer, unable to parse string as an integer"
)

// ValidationDetail is one entry of a 422 response
type ValidationDetail struct {
	Type  string         `json:"type"`          // Machine readable violation
	Loc   []string       `json:"loc"`           // Location and field name
	Msg   string         `json:"msg"`           // Human readable message
	Input any            `json:"input"`         // Raw value, null when missing
	Ctx   map[string]any `json:"ctx,omitempty"` // Violated bound
}

// params is implemented by the bound structs; store publishes the values
type params interface {
	store(c *gin.Context)
}

type walletPath struct {
	WalletID *int `uri:"wallet_id" binding:"required,gt=0,lte=1000"`
}

func (p *walletPath) store(c *gin.Context) {
	c.Set(walletIDKey, *p.WalletID)
}

type updateQuery struct {
	QueryBalance *int `form:"query_balance" binding:"required,gt=0,lte=50000"`
}

func (q *updateQuery) store(c *gin.Context) {
	c.Set(amountKey, *q.QueryBalance)
}

type depositQuery struct {
	QueryBalance   *int   `form:"query_balance" binding:"required,gt=0,lte=50000"`
	AdditionalInfo string `form:"additional_info" binding:"max=255"`
}

func (q *depositQuery) store(c *gin.Context) {
	c.Set(amountKey, *q.QueryBalance)
	c.Set(additionalInfoKey, q.AdditionalInfo)
}

// BindWalletID validates the wallet_id path parameter
func BindWalletID() gin.HandlerFunc {
	return bindParams(nil)
}

// BindWalletUpdate validates wallet_id and query_balance
func BindWalletUpdate() gin.HandlerFunc {
	return bindParams(func() params { return &updateQuery{} })
}

// BindWalletDeposit validates wallet_id, query_balance and additional_info
func BindWalletDeposit() gin.HandlerFunc {
	return bindParams(func() params { return &depositQuery{} })
}

// bindParams reports every invalid field at once, path before query, and
// aborts with 422 before the handler runs
func bindParams(newQuery func() params) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := &walletPath{}
		details := bindLocation("path", uriValues(c), path, "uri")

		var query params
		if newQuery != nil {
			query = newQuery()
			details = append(details, bindLocation("query", c.Request.URL.Query(), query, "form")...)
		}

		if len(details) > 0 {
			logrus.WithFields(logrus.Fields{
				"path":   c.Request.URL.Path,
				"errors": len(details),
			}).Debug("Rejected invalid parameters")
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
			return
		}

		path.store(c)
		if query != nil {
			query.store(c)
		}
		c.Next()
	}
}

func uriValues(c *gin.Context) map[string][]string {
	m := make(map[string][]string, len(c.Params))
	for _, p := range c.Params {
		m[p.Key] = []string{p.Value}
	}
	return m
}

// bindLocation maps raw values onto obj and validates it. Integer fields whose
// raw value does not parse are reported as int_parsing and left out of the
// mapping so the remaining fields are still validated.
func bindLocation(loc string, raw map[string][]string, obj any, tag string) []ValidationDetail {
	t := reflect.TypeOf(obj).Elem()

	// A repeated key binds its last value
	clean := make(map[string][]string, len(raw))
	for k := range raw {
		if v, ok := rawValue(raw, k); ok {
			clean[k] = []string{v}
		}
	}

	byField := make(map[string]ValidationDetail)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get(tag)
		value, ok := rawValue(raw, name)
		if !ok || !isInt(f.Type) {
			continue
		}
		trimmed := strings.TrimSpace(value)
		if _, err := strconv.Atoi(trimmed); err != nil {
			byField[name] = ValidationDetail{Type: detailIntParsing, Loc: []string{loc, name}, Msg: msgIntParsing, Input: value}
			delete(clean, name)
			continue
		}
		clean[name] = []string{trimmed}
	}

	if err := binding.MapFormWithTag(obj, clean, tag); err != nil {
		return []ValidationDetail{{Type: detailValueError, Loc: []string{loc}, Msg: err.Error()}}
	}

	var verrs validator.ValidationErrors
	if err := binding.Validator.ValidateStruct(obj); errors.As(err, &verrs) {
		for _, fe := range verrs {
			sf, _ := t.FieldByName(fe.StructField())
			name := sf.Tag.Get(tag)
			if _, reported := byField[name]; reported {
				continue
			}
			byField[name] = toDetail(loc, name, fe, raw)
		}
	}

	// Declaration order keeps the response stable
	var details []ValidationDetail
	for i := 0; i < t.NumField(); i++ {
		if d, ok := byField[t.Field(i).Tag.Get(tag)]; ok {
			details = append(details, d)
		}
	}
	return details
}

func toDetail(loc, name string, fe validator.FieldError, raw map[string][]string) ValidationDetail {
	d := ValidationDetail{Loc: []string{loc, name}}
	if value, ok := rawValue(raw, name); ok {
		d.Input = value
	}

	bound, _ := strconv.Atoi(fe.Param())
	switch fe.Tag() {
	case "required":
		d.Type, d.Msg = detailMissing, msgMissing
	case "gt":
		d.Type = detailGreaterThan
		d.Msg = "Input should be greater than " + fe.Param()
		d.Ctx = map[string]any{"gt": bound}
	case "lte":
		d.Type = detailLessThanEqual
		d.Msg = "Input should be less than or equal to " + fe.Param()
		d.Ctx = map[string]any{"le": bound}
	case "max":
		d.Type = detailTooLong
		d.Msg = "String should have at most " + fe.Param() + " characters"
		d.Ctx = map[string]any{"max_length": bound}
	default:
		d.Type, d.Msg = detailValueError, fe.Error()
	}
	return d
}

func rawValue(raw map[string][]string, name string) (string, bool) {
	vs, ok := raw[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func isInt(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Int
}

// walletID returns the validated wallet id
func walletID(c *gin.Context) int {
	return c.GetInt(walletIDKey)
}

// amount returns the validated query_balance
func amount(c *gin.Context) int {
	return c.GetInt(amountKey)
}
