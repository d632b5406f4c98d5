package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vapelux/internal/metrics"
	"vapelux/internal/model"
)

//go:generate mockgen -source=postgres.go -destination=./mocks/storage_mock.go -package=mocks Storage

// ErrOrderNotFound возвращается, когда заказ с указанным UID отсутствует в архиве.
var ErrOrderNotFound = errors.New("заказ не найден")

// Storage определяет интерфейс архива принятых заказов.
type Storage interface {
	SaveOrder(ctx context.Context, order *model.Order) error
	GetOrderByUID(ctx context.Context, orderUID string) (*model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	Close() error
}

// postgresStorage обеспечивает взаимодействие с базой данных PostgreSQL.
// Это конкретная реализация интерфейса Storage.
type postgresStorage struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

// New создает подключение к БД, применяет миграции и возвращает
// экземпляр, реализующий интерфейс Storage.
func New(dbURL, migrationsPath string) (Storage, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// Запуск миграций
	if err := runMigrations(dbURL, migrationsPath); err != nil {
		return nil, fmt.Errorf("ошибка применения миграций: %w", err)
	}

	return &postgresStorage{
		db:     db,
		tracer: otel.Tracer("postgres-storage"),
	}, nil
}

// runMigrations выполняет миграции БД до последней версии.
func runMigrations(dbURL, migrationsPath string) error {
	log.Println("Поиск и применение миграций...")

	// Важно: 'file://' префикс
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр миграции: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("не удалось получить версию миграции: %w", err)
	}

	if dirty {
		log.Printf("БД в 'грязном' состоянии (dirty). Версия: %d. Рекомендуется проверка.", version)
	}

	log.Printf("Миграции успешно применены. Текущая версия БД: %d", version)
	return nil
}

// SaveOrder сохраняет заказ и его позиции в одной транзакции.
func (s *postgresStorage) SaveOrder(ctx context.Context, order *model.Order) (err error) {
	ctx, span := s.tracer.Start(ctx, "DB.SaveOrder")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	// defer с функцией, чтобы корректно обработать panic и ошибки
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Printf("Ошибка отката транзакции (после ошибки: %v): %v", err, rbErr)
			}
		}
	}()

	orderQuery := `INSERT INTO orders (order_uid, name, phone, email, delivery_type, address, comment, payment_method, goods_total, delivery_fee, total, date_created) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err = tx.ExecContext(ctx, orderQuery, order.OrderUID, order.Name, order.Phone, order.Email, order.DeliveryType, order.Address, order.Comment, order.PaymentMethod, order.GoodsTotal, order.DeliveryFee, order.Total, order.DateCreated); err != nil {
		return fmt.Errorf("ошибка сохранения заказа: %w", err)
	}

	for _, item := range order.Items {
		itemQuery := `INSERT INTO order_items (order_uid, product_id, name, brand, type, nicotine, price, image, quantity) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		if _, err = tx.ExecContext(ctx, itemQuery, order.OrderUID, item.ID, item.Name, item.Brand, item.Type, item.Nicotine, item.Price, item.Image, item.Quantity); err != nil {
			return fmt.Errorf("ошибка сохранения позиции заказа: %w", err)
		}
	}

	err = tx.Commit()
	return err
}

// GetOrderByUID извлекает заказ с позициями по его UID.
func (s *postgresStorage) GetOrderByUID(ctx context.Context, orderUID string) (*model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetOrderByUID")
	defer span.End()

	var order model.Order
	query := `SELECT order_uid, name, phone, email, delivery_type, address, comment, payment_method, goods_total, delivery_fee, total, date_created FROM orders WHERE order_uid = $1`

	if err := s.db.GetContext(ctx, &order, query, orderUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		metrics.DBErrors.WithLabelValues("get_order").Inc()
		return nil, fmt.Errorf("не удалось получить заказ: %w", err)
	}

	itemsQuery := `SELECT product_id AS id, name, brand, type, nicotine, price, image, quantity FROM order_items WHERE order_uid = $1 ORDER BY id`
	if err := s.db.SelectContext(ctx, &order.Items, itemsQuery, orderUID); err != nil {
		metrics.DBErrors.WithLabelValues("get_items").Inc()
		return nil, fmt.Errorf("не удалось получить позиции заказа: %w", err)
	}

	return &order, nil
}

// GetAllOrders извлекает все заказы из БД для прогрева кэша.
func (s *postgresStorage) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "DB.GetAllOrders")
	defer span.End()

	// Заказы и позиции одним запросом, без проблемы N+1.
	query := `
        SELECT
            o.order_uid, o.name, o.phone, o.email, o.delivery_type, o.address, o.comment,
            o.payment_method, o.goods_total, o.delivery_fee, o.total, o.date_created,

            i.product_id "item.id", i.name "item.name", i.brand "item.brand", i.type "item.type",
            i.nicotine "item.nicotine", i.price "item.price", i.image "item.image", i.quantity "item.quantity"

        FROM orders o
        JOIN order_items i ON o.order_uid = i.order_uid
        ORDER BY o.date_created DESC`

	type fullOrderRow struct {
		model.Order
		Item model.CartLine `db:"item"`
	}

	var rows []fullOrderRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		metrics.DBErrors.WithLabelValues("get_all_orders").Inc()
		return nil, fmt.Errorf("ошибка получения всех заказов: %w", err)
	}

	// Группируем позиции по заказам.
	ordersMap := make(map[string]*model.Order)
	var uids []string
	for _, row := range rows {
		if _, exists := ordersMap[row.Order.OrderUID]; !exists {
			order := row.Order
			order.Items = []model.CartLine{}
			ordersMap[order.OrderUID] = &order
			uids = append(uids, order.OrderUID)
		}
		order := ordersMap[row.Order.OrderUID]
		order.Items = append(order.Items, row.Item)
	}

	orders := make([]model.Order, 0, len(ordersMap))
	for _, uid := range uids {
		orders = append(orders, *ordersMap[uid])
	}

	return orders, nil
}

// Close закрывает соединение с БД.
func (s *postgresStorage) Close() error {
	return s.db.Close()
}
