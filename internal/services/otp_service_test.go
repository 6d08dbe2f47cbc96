package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/nirogsvc/domain"
	"github.com/you/nirogsvc/internal/infrastructure/clock"
	"github.com/you/nirogsvc/internal/mocks"
)

// createOTPServiceForTest creates an OTPService over an in-memory ledger
func createOTPServiceForTest(t *testing.T) (domain.OTPService, *mocks.MockOTPRepository, *mocks.MockNotificationService, *clock.ManagedClock) {
	t.Helper()

	repo := mocks.NewMockOTPRepository()
	notifier := mocks.NewMockNotificationService()
	clk := newTestClock(t)
	svc := NewOTPService(repo, notifier, mocks.NewMockAuditLogger(), clk, zerolog.Nop(), DefaultOTPConfig)
	return svc, repo, notifier, clk
}

func TestOTPServiceImpl_Send(t *testing.T) {
	svc, repo, notifier, _ := createOTPServiceForTest(t)
	var sentTo, sentMsg string
	notifier.SendSMSFunc = func(to, message string) error {
		sentTo, sentMsg = to, message
		return nil
	}

	rec, err := svc.Send(context.Background(), "98765 43210", domain.OTPPurposeRegistration)
	require.NoError(t, err)

	n, err := strconv.Atoi(rec.Code)
	require.NoError(t, err)
	assert.True(t, n >= 100000 && n <= 999999, "code %s out of range", rec.Code)
	assert.Equal(t, "9876543210", rec.Phone)
	assert.Equal(t, testNow.Add(10*time.Minute), rec.ExpiresAt)
	assert.Zero(t, rec.Attempts)
	assert.False(t, rec.IsVerified)
	assert.NotEmpty(t, rec.ID)

	assert.Equal(t, "9876543210", sentTo)
	assert.Equal(t, "Your Nirog OTP is: "+rec.Code+". Valid for 10 minutes.", sentMsg)
	assert.Equal(t, rec.ID, repo.Stored("9876543210", domain.OTPPurposeRegistration).ID)
}

func TestOTPServiceImpl_Send_Validation(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		purpose string
		want    string
	}{
		{name: "missing phone", phone: "", purpose: "login", want: MsgPhonePurposeRequired},
		{name: "missing purpose", phone: "9876543210", purpose: "", want: MsgPhonePurposeRequired},
		{name: "bad phone", phone: "1234567890", purpose: "login", want: MsgInvalidPhone},
		{name: "bad purpose", phone: "9876543210", purpose: "signup", want: MsgInvalidPurpose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := createOTPServiceForTest(t)
			_, err := svc.Send(context.Background(), tt.phone, tt.purpose)
			assert.EqualError(t, err, tt.want)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestOTPServiceImpl_Send_DeliveryFailureIsNotFatal(t *testing.T) {
	svc, _, notifier, _ := createOTPServiceForTest(t)
	notifier.SendSMSFunc = func(to, message string) error { return errors.New("twilio down") }

	rec, err := svc.Send(context.Background(), "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Code)
}

func TestOTPServiceImpl_Send_ReplacesEarlierCode(t *testing.T) {
	svc, _, _, _ := createOTPServiceForTest(t)
	ctx := context.Background()

	first, err := svc.Send(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)
	second, err := svc.Send(ctx, "9876543210", domain.OTPPurposeLogin)
	require.NoError(t, err)

	if first.Code != second.Code {
		assert.ErrorIs(t, svc.Verify(ctx, "9876543210", first.Code, domain.OTPPurposeLogin), domain.ErrOTPInvalid)
	}
	assert.NoError(t, svc.Verify(ctx, "9876543210", second.Code, domain.OTPPurposeLogin))
}

func TestOTPServiceImpl_Verify(t *testing.T) {
	const phone = "9876543210"
	tests := []struct {
		name  string
		setup func(t *testing.T, svc domain.OTPService, clk *clock.ManagedClock, code string)
		code  func(code string) string
		want  error
	}{
		{
			name: "correct code",
			code: func(code string) string { return code },
		},
		{
			name: "wrong code",
			code: func(string) string { return "000000" },
			want: domain.ErrOTPInvalid,
		},
		{
			name: "expired",
			setup: func(t *testing.T, svc domain.OTPService, clk *clock.ManagedClock, code string) {
				clk.WarpForward(10*time.Minute + time.Second)
			},
			code: func(code string) string { return code },
			want: domain.ErrOTPExpired,
		},
		{
			name: "still valid at the expiry instant",
			setup: func(t *testing.T, svc domain.OTPService, clk *clock.ManagedClock, code string) {
				clk.WarpForward(10 * time.Minute)
			},
			code: func(code string) string { return code },
		},
		{
			name: "locked after three misses even with the right code",
			setup: func(t *testing.T, svc domain.OTPService, clk *clock.ManagedClock, code string) {
				for i := 0; i < 3; i++ {
					require.ErrorIs(t, svc.Verify(context.Background(), phone, "000000", domain.OTPPurposeLogin), domain.ErrOTPInvalid)
				}
			},
			code: func(code string) string { return code },
			want: domain.ErrOTPMaxAttempts,
		},
		{
			name: "a code verifies once",
			setup: func(t *testing.T, svc domain.OTPService, clk *clock.ManagedClock, code string) {
				require.NoError(t, svc.Verify(context.Background(), phone, code, domain.OTPPurposeLogin))
			},
			code: func(code string) string { return code },
			want: domain.ErrOTPNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, clk := createOTPServiceForTest(t)
			rec, err := svc.Send(context.Background(), phone, domain.OTPPurposeLogin)
			require.NoError(t, err)
			if tt.setup != nil {
				tt.setup(t, svc, clk, rec.Code)
			}
			err = svc.Verify(context.Background(), phone, tt.code(rec.Code), domain.OTPPurposeLogin)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestOTPServiceImpl_Verify_MissingRecordAndFields(t *testing.T) {
	svc, _, _, _ := createOTPServiceForTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Verify(ctx, "9876543210", "123456", domain.OTPPurposeLogin), domain.ErrOTPNotFound)
	assert.EqualError(t, svc.Verify(ctx, "9876543210", "", domain.OTPPurposeLogin), MsgOTPFieldsRequired)
	assert.ErrorIs(t, svc.Verify(ctx, "9876543210", "123456", domain.OTPPurposeRegistration), domain.ErrOTPNotFound,
		"purposes are separate ledgers")
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])
	}
}
