package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/you/nirogsvc/domain"
)

// Hash fields of an OTP record.
const (
	otpFieldID        = "id"
	otpFieldPhone     = "phone"
	otpFieldCode      = "code"
	otpFieldPurpose   = "purpose"
	otpFieldExpiresAt = "expires_at"
	otpFieldVerified  = "verified"
	otpFieldAttempts  = "attempts"
	otpFieldCreatedAt = "created_at"
)

// incrementAttempts bumps the counter only if the stored record is still the
// one the caller read. Returns -1 when it was replaced or removed.
var incrementAttempts = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') ~= ARGV[1] then
	return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

// markVerified sets the verified flag once. Returns 0 when the record was
// replaced, removed or already verified.
var markVerified = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') ~= ARGV[1] then
	return 0
end
if redis.call('HGET', KEYS[1], 'verified') == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'verified', '1')
return 1
`)

// OTPRepositoryImpl implements domain.OTPRepository using Redis hashes.
// There is one key per (purpose, phone); it expires retention after the code does.
type OTPRepositoryImpl struct {
	client    redis.Cmdable
	prefix    string
	retention time.Duration
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(client redis.Cmdable, retention time.Duration) domain.OTPRepository {
	return &OTPRepositoryImpl{
		client:    client,
		prefix:    "otp:",
		retention: retention,
	}
}

func (r *OTPRepositoryImpl) key(phone, purpose string) string {
	return r.prefix + purpose + ":" + phone
}

// Replace implements domain.OTPRepository
func (r *OTPRepositoryImpl) Replace(ctx context.Context, record *domain.OTPRecord) error {
	key := r.key(record.Phone, record.Purpose)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]interface{}{
			otpFieldID:        record.ID,
			otpFieldPhone:     record.Phone,
			otpFieldCode:      record.Code,
			otpFieldPurpose:   record.Purpose,
			otpFieldExpiresAt: record.ExpiresAt.UnixNano(),
			otpFieldVerified:  boolField(record.IsVerified),
			otpFieldAttempts:  record.Attempts,
			otpFieldCreatedAt: record.CreatedAt.UnixNano(),
		})
		pipe.ExpireAt(ctx, key, record.ExpiresAt.Add(r.retention))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// FindActive implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindActive(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.key(phone, purpose)).Result()
	if err != nil {
		return nil, fmt.Errorf("load otp: %w", err)
	}
	if len(fields) == 0 || fields[otpFieldVerified] == "1" {
		return nil, domain.ErrOTPNotFound
	}
	return parseOTPRecord(fields)
}

// IncrementAttempts implements domain.OTPRepository
func (r *OTPRepositoryImpl) IncrementAttempts(ctx context.Context, record *domain.OTPRecord) (int, error) {
	n, err := incrementAttempts.Run(ctx, r.client, []string{r.key(record.Phone, record.Purpose)}, record.ID).Int()
	if err != nil {
		return 0, fmt.Errorf("increment otp attempts: %w", err)
	}
	if n < 0 {
		return 0, domain.ErrOTPNotFound
	}
	record.Attempts = n
	return n, nil
}

// MarkVerified implements domain.OTPRepository
func (r *OTPRepositoryImpl) MarkVerified(ctx context.Context, record *domain.OTPRecord) error {
	n, err := markVerified.Run(ctx, r.client, []string{r.key(record.Phone, record.Purpose)}, record.ID).Int()
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	if n == 0 {
		return domain.ErrOTPNotFound
	}
	record.IsVerified = true
	return nil
}

func parseOTPRecord(fields map[string]string) (*domain.OTPRecord, error) {
	expires, err := strconv.ParseInt(fields[otpFieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt otp expiry: %w", err)
	}
	created, err := strconv.ParseInt(fields[otpFieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt otp creation time: %w", err)
	}
	attempts, err := strconv.Atoi(fields[otpFieldAttempts])
	if err != nil {
		return nil, fmt.Errorf("corrupt otp attempts: %w", err)
	}
	if fields[otpFieldID] == "" {
		return nil, errors.New("corrupt otp record: missing id")
	}
	return &domain.OTPRecord{
		ID:         fields[otpFieldID],
		Phone:      fields[otpFieldPhone],
		Code:       fields[otpFieldCode],
		Purpose:    fields[otpFieldPurpose],
		ExpiresAt:  time.Unix(0, expires).UTC(),
		IsVerified: fields[otpFieldVerified] == "1",
		Attempts:   attempts,
		CreatedAt:  time.Unix(0, created).UTC(),
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
