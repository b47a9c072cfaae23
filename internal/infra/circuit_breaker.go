package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Corta el paso hacia la API de tipo de cambio cuando falla de forma
// sostenida, para que la emisión de facturas no se quede esperando timeouts
// externos. Cerrado → Abierto tras N fallos consecutivos; vencido el periodo
// de espera se permite una llamada de prueba (semiabierto) antes de cerrar.

// CBState es el estado del circuito.
type CBState int

const (
	CBClosed   CBState = iota // operación normal
	CBOpen                    // disparado: toda llamada falla de inmediato
	CBHalfOpen                // en prueba: se permite una llamada
)

// String devuelve el nombre del estado para el health check y los logs.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrCircuitOpen se devuelve cuando el circuito está abierto y la llamada
// externa ni siquiera se intenta.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig ajusta los umbrales del circuito.
// OnStateChange, si se define, se invoca en cada transición de estado con el
// lock interno tomado: no debe llamar de vuelta al breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           // fallos consecutivos para abrir
	SuccessThreshold int           // aciertos en semiabierto para cerrar
	OpenTimeout      time.Duration // espera antes de pasar a semiabierto
	OnStateChange    func(desde, hacia CBState)
}

// DefaultCBConfig son los umbrales usados para la consulta de tipo de cambio.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker protege una llamada externa con transiciones thread-safe.
type CircuitBreaker struct {
	mu        sync.Mutex
	cfg       CircuitBreakerConfig
	state     CBState
	fallos    int
	aciertos  int
	abiertoEn time.Time
}

// NewCircuitBreaker crea un circuito cerrado con los umbrales dados.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State devuelve el estado vigente, promoviendo abierto → semiabierto si ya
// venció el periodo de espera.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.abiertoEn) >= cb.cfg.OpenTimeout {
		cb.transicion(CBHalfOpen)
	}
	return cb.state
}

// Execute corre fn a través del circuito.
// Si el circuito está abierto devuelve ErrCircuitOpen sin invocar fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.registrarFallo()
		return err
	}
	cb.registrarAcierto()
	return nil
}

// transicion cambia de estado, reinicia los contadores y notifica el hook.
// Debe llamarse con el lock tomado.
func (cb *CircuitBreaker) transicion(hacia CBState) {
	desde := cb.state
	cb.state = hacia
	cb.fallos = 0
	cb.aciertos = 0
	if hacia == CBOpen {
		cb.abiertoEn = time.Now()
	}
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(desde, hacia)
	}
}

func (cb *CircuitBreaker) registrarFallo() {
	switch cb.state {
	case CBClosed:
		cb.fallos++
		if cb.fallos >= cb.cfg.FailureThreshold {
			cb.transicion(CBOpen)
		}
	case CBHalfOpen:
		// La llamada de prueba falló: de vuelta a abierto.
		cb.transicion(CBOpen)
	}
}

func (cb *CircuitBreaker) registrarAcierto() {
	switch cb.state {
	case CBClosed:
		cb.fallos = 0
	case CBHalfOpen:
		cb.aciertos++
		if cb.aciertos >= cb.cfg.SuccessThreshold {
			cb.transicion(CBClosed)
		}
	}
}
