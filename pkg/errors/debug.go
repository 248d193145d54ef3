package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v84"
)

// ErrorDump is the log-side view of an error chain. Driver and gateway
// sections are filled only when such an error is found in the chain.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	Postgres *PostgresDetail `json:"postgres,omitempty"`
	Gateway  *GatewayDetail  `json:"gateway,omitempty"`
}

type PostgresDetail struct {
	Code       string `json:"code"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// GatewayDetail carries what Stripe support asks for when tracing a failure.
type GatewayDetail struct {
	Type       string `json:"type"`
	Code       string `json:"code,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.Gateway = gatewayDetail(err)
	if d.Gateway == nil {
		d.Postgres = postgresDetail(err)
	}
	return d
}

// Fields flattens the dump into log fields, omitting empty sections.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if pg := d.Postgres; pg != nil {
		fields["pg_code"] = pg.Code
		fields["pg_constraint"] = pg.Constraint
		fields["pg_table"] = pg.Table
		fields["pg_column"] = pg.Column
		fields["pg_detail"] = pg.Detail
		fields["pg_message"] = pg.Message
	}
	if gw := d.Gateway; gw != nil {
		fields["stripe_type"] = gw.Type
		fields["stripe_code"] = gw.Code
		fields["stripe_request_id"] = gw.RequestID
		fields["stripe_status"] = gw.HTTPStatus
	}
	return fields
}

func gatewayDetail(err error) *GatewayDetail {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return nil
	}
	return &GatewayDetail{
		Type:       string(se.Type),
		Code:       string(se.Code),
		RequestID:  se.RequestID,
		HTTPStatus: se.HTTPStatusCode,
	}
}

// postgresDetail understands both pgx (gorm's driver) and lib/pq errors.
func postgresDetail(err error) *PostgresDetail {
	if pgxErr := (*pgconn.PgError)(nil); errors.As(err, &pgxErr) {
		return &PostgresDetail{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	if pqErr := (*pq.Error)(nil); errors.As(err, &pqErr) {
		return &PostgresDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
