package tests

import (
	"errors"
	"testing"
	"time"

	"granimar/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuito_AbreTrasFallosConsecutivos(t *testing.T) {
	var transiciones []string
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
		OnStateChange: func(desde, hacia infra.CBState) {
			transiciones = append(transiciones, desde.String()+"->"+hacia.String())
		},
	})

	caida := errors.New("api caída")
	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return caida }))
	}
	assert.Equal(t, infra.CBOpen, cb.State())
	assert.Equal(t, []string{"closed->open"}, transiciones)

	// Abierto: falla rápido sin invocar la llamada externa
	invocada := false
	err := cb.Execute(func() error { invocada = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, invocada)
}

func TestCircuito_SeRecuperaTrasLaEspera(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		OpenTimeout:      10 * time.Millisecond,
	})
	require.Error(t, cb.Execute(func() error { return errors.New("timeout") }))
	require.Equal(t, infra.CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, infra.CBHalfOpen, cb.State())

	// Dos aciertos seguidos en semiabierto cierran el circuito
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuito_PruebaFallidaReabre(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})
	require.Error(t, cb.Execute(func() error { return errors.New("timeout") }))

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, infra.CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errors.New("sigue caída") }))
	assert.Equal(t, infra.CBOpen, cb.State())
}
