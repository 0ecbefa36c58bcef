package retry

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"
	goretry "github.com/sethvargo/go-retry"
)

const (
	defaultInitialDelay = time.Millisecond * 100
	jitterPercent       = 10
	// При MaxRetries = 2 и InitialDelay = 100ms:
	// 0-ая попытка: 0ms
	// 1-ая попытка: ~100ms
	// 2-ая попытка: ~200ms, потом завершение
)

var ErrTimeout = errors.New("operation timed out")

// Policy задает ограничения для одной операции с внешним сервисом
type Policy struct {
	// Timeout ограничивает каждую попытку отдельно
	Timeout time.Duration
	// MaxRetries - число повторов после первой попытки
	MaxRetries   uint64
	InitialDelay time.Duration
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable помечает ошибку как временную. Остальные ошибки прерывают повторы сразу.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// Do выполняет операцию с таймаутом на каждую попытку и экспоненциальной задержкой между попытками.
// Истечение таймаута попытки считается временной ошибкой; если последняя попытка
// завершилась по таймауту, возвращаемая ошибка совместима с ErrTimeout.
func Do(ctx context.Context, policy Policy, operation func(ctx context.Context) error) error {
	initialDelay := policy.InitialDelay
	if initialDelay <= 0 {
		initialDelay = defaultInitialDelay
	}
	backoff := goretry.WithMaxRetries(
		policy.MaxRetries,
		goretry.WithJitterPercent(jitterPercent, goretry.NewExponential(initialDelay)),
	)

	attempt := 0
	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		var (
			attemptCtx context.Context
			cancel     context.CancelFunc
		)
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		} else {
			attemptCtx, cancel = context.WithCancel(ctx)
		}
		defer cancel()

		err := operation(attemptCtx)
		if err == nil {
			return nil
		}
		attempt++
		// таймаут попытки повторяем, отмену родительского контекста - нет
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = Retryable(errors.Join(ErrTimeout, err))
		}
		var rerr *retryableError
		if !errors.As(err, &rerr) {
			return err
		}
		log.Warnf("error during attempt %d: %v", attempt, rerr.err)
		return goretry.RetryableError(rerr.err)
	})
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}
