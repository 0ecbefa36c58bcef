package service

import (
	"context"
	"ecourse-admin/internal/entity"
	"ecourse-admin/internal/repo"
	"ecourse-admin/internal/usecase"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
)

type reconcilerMetrics struct {
	sweeps              *prometheus.CounterVec
	orphansDeleted      prometheus.Counter
	coursesMissingBlobs prometheus.Gauge
}

func newReconcilerMetrics(registerer prometheus.Registerer) *reconcilerMetrics {
	m := &reconcilerMetrics{
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ecourse",
			Subsystem: "reconciler",
			Name:      "sweeps_total",
			Help:      "Number of reconciliation sweeps by result.",
		}, []string{"result"}),
		orphansDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ecourse",
			Subsystem: "reconciler",
			Name:      "orphaned_blobs_deleted_total",
			Help:      "Pictures deleted because no course referenced them.",
		}),
		coursesMissingBlobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ecourse",
			Subsystem: "reconciler",
			Name:      "courses_missing_blob",
			Help:      "Courses whose photo_link points at a missing picture, as of the last sweep.",
		}),
	}
	registerer.MustRegister(m.sweeps, m.orphansDeleted, m.coursesMissingBlobs)
	return m
}

// Reconciler сверяет хранилище картинок с таблицей курсов. Между ними нет транзакций,
// поэтому сиротские картинки (после неудачных откатов) и битые ссылки ищутся здесь.
type Reconciler struct {
	courseRepo repo.Course
	blobRepo   repo.Blob
	events     repo.CourseEvent
	// grace защищает картинки, загруженные прямо сейчас, у которых строка курса еще не вставлена
	grace    time.Duration
	interval time.Duration
	metrics  *reconcilerMetrics
	now      func() time.Time
}

func NewReconciler(
	courseRepo repo.Course,
	blobRepo repo.Blob,
	events repo.CourseEvent,
	grace time.Duration,
	interval time.Duration,
	registerer prometheus.Registerer,
) *Reconciler {
	return &Reconciler{
		courseRepo: courseRepo,
		blobRepo:   blobRepo,
		events:     events,
		grace:      grace,
		interval:   interval,
		metrics:    newReconcilerMetrics(registerer),
		now:        time.Now,
	}
}

var _ usecase.Reconciler = (*Reconciler)(nil)

func (r *Reconciler) Sweep(ctx context.Context) (*entity.SweepReport, error) {
	report, err := r.sweep(ctx)
	if err != nil {
		r.metrics.sweeps.WithLabelValues("error").Inc()
		return nil, err
	}
	result := "ok"
	if report.Errors > 0 || len(report.UnresolvedLinks) > 0 {
		result = "partial"
	}
	r.metrics.sweeps.WithLabelValues(result).Inc()
	r.metrics.orphansDeleted.Add(float64(report.DeletedBlobs))
	r.metrics.coursesMissingBlobs.Set(float64(len(report.CoursesMissingBlobs)))
	return report, nil
}

func (r *Reconciler) sweep(ctx context.Context) (*entity.SweepReport, error) {
	// сначала картинки, потом ссылки: курс, созданный между двумя вызовами, не даст ложную сироту
	blobs, err := r.blobRepo.ListBlobs(ctx)
	if err != nil {
		return nil, err
	}
	links, err := r.courseRepo.ListPhotoLinks(ctx)
	if err != nil {
		return nil, err
	}

	report := &entity.SweepReport{
		OrphanedBlobs:       []string{},
		CoursesMissingBlobs: []string{},
		UnresolvedLinks:     []string{},
	}
	// сравниваем по ключам: публичный адрес у шлюза и у сверки может отличаться
	referenced, unresolved := r.referencedKeys(links)
	report.UnresolvedLinks = append(report.UnresolvedLinks, unresolved...)
	if len(unresolved) > 0 {
		log.Warnf("Ссылки курсов вне хранилища (%d), удаление сирот пропущено: %v", len(unresolved), unresolved)
	}

	stored := make(map[string]struct{}, len(blobs))
	deadline := r.now().Add(-r.grace)
	var errs []error
	for _, blob := range blobs {
		stored[blob.Key] = struct{}{}
		if _, ok := referenced[blob.Key]; ok {
			continue
		}
		report.OrphanedBlobs = append(report.OrphanedBlobs, blob.URL)
		if len(unresolved) > 0 || blob.LastModified.After(deadline) {
			continue
		}
		if err := r.blobRepo.DeleteBlob(ctx, blob.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		report.DeletedBlobs++
	}
	for _, link := range links {
		key, err := r.blobRepo.KeyOf(link)
		if err != nil {
			continue
		}
		if _, ok := stored[key]; ok {
			continue
		}
		// картинка могла появиться после листинга, перепроверяем точечно
		exists, err := r.blobRepo.BlobExists(ctx, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !exists {
			report.CoursesMissingBlobs = append(report.CoursesMissingBlobs, link)
		}
	}
	report.Errors = len(errs)
	if len(errs) > 0 {
		log.Errorf("Ошибки при сверке картинок (%d): %v", len(errs), errors.Join(errs...))
	}
	return report, nil
}

func (r *Reconciler) referencedKeys(links []string) (map[string]struct{}, []string) {
	referenced := make(map[string]struct{}, len(links))
	var unresolved []string
	for _, link := range links {
		key, err := r.blobRepo.KeyOf(link)
		if err != nil {
			unresolved = append(unresolved, link)
			continue
		}
		referenced[key] = struct{}{}
	}
	return referenced, unresolved
}

// RemoveOrphan удаляет картинку из события blob_orphaned, если на нее по-прежнему никто не ссылается
func (r *Reconciler) RemoveOrphan(ctx context.Context, photoLink string) error {
	key, err := r.blobRepo.KeyOf(photoLink)
	if err != nil {
		return err
	}
	links, err := r.courseRepo.ListPhotoLinks(ctx)
	if err != nil {
		return err
	}
	referenced, unresolved := r.referencedKeys(links)
	if len(unresolved) > 0 {
		return fmt.Errorf("%w: %d course links outside the store", repo.ErrForeignBlob, len(unresolved))
	}
	if _, ok := referenced[key]; ok {
		return nil
	}
	if err := r.blobRepo.DeleteBlob(ctx, key); err != nil {
		return err
	}
	r.metrics.orphansDeleted.Inc()
	return nil
}

// Start запускает сверку по расписанию и обработку событий blob_orphaned до отмены ctx
func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	events, err := r.events.SubscribeCourseEvents(ctx)
	if err != nil {
		log.Errorf("Подписка на события курсов недоступна, работаем только по расписанию: %v", err)
	}

	log.Infof("Запущена сверка картинок, интервал: %s", r.interval)
	r.logSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Остановка сверки картинок")
			return
		case <-ticker.C:
			r.logSweep(ctx)
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Type != entity.BlobOrphaned || event.PhotoLink == "" {
				continue
			}
			if err := r.RemoveOrphan(ctx, event.PhotoLink); err != nil {
				log.Errorf("Ошибка удаления сиротской картинки %s: %v", event.PhotoLink, err)
			}
		}
	}
}

func (r *Reconciler) logSweep(ctx context.Context) {
	report, err := r.Sweep(ctx)
	if err != nil {
		log.Errorf("Ошибка сверки картинок: %v", err)
		return
	}
	log.Infof("Сверка завершена: сирот %d, удалено %d, курсов без картинки %d, ошибок %d",
		len(report.OrphanedBlobs), report.DeletedBlobs, len(report.CoursesMissingBlobs), report.Errors)
	for _, link := range report.CoursesMissingBlobs {
		log.Warnf("Курс ссылается на отсутствующую картинку: %s", link)
	}
}
