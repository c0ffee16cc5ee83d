package mocks

import (
	"context"

	"cinema-reservation/internal/payment"

	"github.com/stretchr/testify/mock"
)

type MockPaymentAdapter struct {
	mock.Mock
}

func (m *MockPaymentAdapter) Authorize(ctx context.Context, charge payment.Charge) (payment.Authorization, error) {
	args := m.Called(ctx, charge)
	return args.Get(0).(payment.Authorization), args.Error(1)
}

func (m *MockPaymentAdapter) Refund(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}
