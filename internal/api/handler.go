package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"vapelux/internal/cache"
	"vapelux/internal/cart"
	"vapelux/internal/catalog"
	"vapelux/internal/checkout"
	"vapelux/internal/database"
	"vapelux/internal/kvstore"
	"vapelux/internal/metrics"
	"vapelux/internal/model"
)

// CatalogHandler отдает каталог товаров и параметры фильтров.
type CatalogHandler struct {
	logger *zap.Logger
}

// NewCatalogHandler создает новый экземпляр CatalogHandler.
func NewCatalogHandler(logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{logger: logger}
}

// List возвращает товары, отфильтрованные по query-параметрам.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	handlerName := "CatalogList"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	f := catalog.DefaultFilterState()
	q := r.URL.Query()

	if v := q.Get("min_price"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "некорректное значение min_price", handlerName)
			return
		}
		f.PriceMin = n
	}
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "некорректное значение max_price", handlerName)
			return
		}
		f.PriceMax = n
	}
	f.Brands = q["brand"]
	f.Types = q["type"]
	if v := q.Get("nicotine"); v != "" {
		bucket, ok := catalog.ParseBucket(v)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "некорректное значение nicotine", handlerName)
			return
		}
		f.Nicotine = bucket
	}

	products := catalog.Filter(catalog.All(), f)

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// GetByID возвращает один товар каталога.
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	handlerName := "CatalogGetByID"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректный идентификатор товара", handlerName)
		return
	}

	product, err := catalog.Get(id)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "товар не найден", handlerName)
		return
	}

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, product)
}

// Filters возвращает доступные значения фильтров каталога.
func (h *CatalogHandler) Filters(w http.ResponseWriter, r *http.Request) {
	handlerName := "CatalogFilters"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"brands":    catalog.Brands(),
		"types":     catalog.Types(),
		"price_min": catalog.DefaultPriceMin,
		"price_max": catalog.DefaultPriceMax,
	})
}

// cartResponse - состояние корзины в ответах API.
type cartResponse struct {
	Items []model.CartLine `json:"items"`
	Total int              `json:"total"`
	Count int              `json:"count"`
}

func newCartResponse(c *cart.Store) cartResponse {
	return cartResponse{Items: c.Items(), Total: c.Total(), Count: c.Count()}
}

// CartHandler обрабатывает операции с корзиной текущей сессии.
type CartHandler struct {
	carts  *cart.Manager
	logger *zap.Logger
}

// NewCartHandler создает новый экземпляр CartHandler.
func NewCartHandler(carts *cart.Manager, logger *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// Get возвращает текущее состояние корзины.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	handlerName := "CartGet"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	c := h.carts.ForSession(sessionID(r))

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// AddItem добавляет товар каталога в корзину.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	handlerName := "CartAddItem"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	var req struct {
		ProductID int64 `json:"product_id"`
		Quantity  int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректное тело запроса", handlerName)
		return
	}

	product, err := catalog.Get(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "товар не найден", handlerName)
		return
	}

	c := h.carts.ForSession(sessionID(r))
	c.Add(product, req.Quantity)
	metrics.CartOperations.WithLabelValues("add").Inc()

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// UpdateItem меняет количество позиции. Ноль и меньше удаляет позицию.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	handlerName := "CartUpdateItem"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректный идентификатор товара", handlerName)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректное тело запроса", handlerName)
		return
	}

	c := h.carts.ForSession(sessionID(r))
	c.UpdateQuantity(id, req.Quantity)
	metrics.CartOperations.WithLabelValues("update").Inc()

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// RemoveItem удаляет позицию из корзины.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	handlerName := "CartRemoveItem"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректный идентификатор товара", handlerName)
		return
	}

	c := h.carts.ForSession(sessionID(r))
	c.Remove(id)
	metrics.CartOperations.WithLabelValues("remove").Inc()

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, newCartResponse(c))
}

// CheckoutHandler принимает форму оформления заказа.
type CheckoutHandler struct {
	service *checkout.Service
	carts   *cart.Manager
	logger  *zap.Logger
}

// NewCheckoutHandler создает новый экземпляр CheckoutHandler.
func NewCheckoutHandler(service *checkout.Service, carts *cart.Manager, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, carts: carts, logger: logger}
}

// Submit валидирует форму и передает заказ в обработку.
// Корзина очищается только после успешного приема заказа.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	handlerName := "CheckoutSubmit"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	var draft model.OrderDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "некорректное тело запроса", handlerName)
		return
	}

	c := h.carts.ForSession(sessionID(r))
	uid, err := h.service.Submit(r.Context(), draft, c.Items())
	if err != nil {
		var fieldErrs checkout.FieldErrors
		switch {
		case errors.As(err, &fieldErrs):
			metrics.OrdersSubmitted.WithLabelValues("validation_failed").Inc()
			metrics.HttpRequestsTotal.WithLabelValues(handlerName, "422").Inc()
			respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"errors": fieldErrs,
			})
		case errors.Is(err, checkout.ErrEmptyCart):
			metrics.OrdersSubmitted.WithLabelValues("validation_failed").Inc()
			respondWithError(w, http.StatusConflict, "корзина пуста", handlerName)
		default:
			h.logger.Error("ошибка оформления заказа", zap.Error(err))
			metrics.OrdersSubmitted.WithLabelValues("submit_failed").Inc()
			respondWithError(w, http.StatusServiceUnavailable, "не удалось принять заказ", handlerName)
		}
		return
	}

	c.Clear()
	metrics.CartOperations.WithLabelValues("clear").Inc()
	metrics.OrdersSubmitted.WithLabelValues("accepted").Inc()

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "202").Inc()
	respondWithJSON(w, http.StatusAccepted, map[string]string{"order_uid": uid})
}

// OrderHandler обрабатывает запросы к архиву заказов.
type OrderHandler struct {
	storage database.Storage
	cache   cache.Cache
	logger  *zap.Logger
}

// NewOrderHandler создает новый экземпляр OrderHandler.
func NewOrderHandler(storage database.Storage, orderCache cache.Cache, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{storage: storage, cache: orderCache, logger: logger}
}

// GetByUID ищет заказ по UID сначала в кэше, затем в БД.
func (h *OrderHandler) GetByUID(w http.ResponseWriter, r *http.Request) {
	handlerName := "OrderGetByUID"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	orderUID := chi.URLParam(r, "orderUID")
	if orderUID == "" {
		respondWithError(w, http.StatusBadRequest, "UID заказа не указан", handlerName)
		return
	}

	if order, found := h.cache.Get(r.Context(), orderUID); found {
		metrics.CacheHits.Inc()
		metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
		respondWithJSON(w, http.StatusOK, order)
		return
	}
	metrics.CacheMisses.Inc()

	order, err := h.storage.GetOrderByUID(r.Context(), orderUID)
	if err != nil {
		if !errors.Is(err, database.ErrOrderNotFound) {
			h.logger.Error("ошибка получения заказа из БД", zap.Error(err))
			metrics.DBErrors.WithLabelValues("get_order").Inc()
		}
		respondWithError(w, http.StatusNotFound, "заказ не найден", handlerName)
		return
	}

	h.cache.Set(r.Context(), orderUID, order)

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, order)
}

// InstallPromptHandler хранит флаг скрытия баннера установки приложения.
type InstallPromptHandler struct {
	kv     kvstore.Store
	logger *zap.Logger
}

// NewInstallPromptHandler создает новый экземпляр InstallPromptHandler.
func NewInstallPromptHandler(kv kvstore.Store, logger *zap.Logger) *InstallPromptHandler {
	return &InstallPromptHandler{kv: kv, logger: logger}
}

// Get сообщает, скрыл ли покупатель баннер установки.
func (h *InstallPromptHandler) Get(w http.ResponseWriter, r *http.Request) {
	handlerName := "InstallPromptGet"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	value, ok, err := h.kv.Read(kvstore.InstallPromptDismissKey)
	if err != nil {
		h.logger.Warn("ошибка чтения флага баннера", zap.Error(err))
	}
	dismissed := ok && value == "true"

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "200").Inc()
	respondWithJSON(w, http.StatusOK, map[string]bool{"dismissed": dismissed})
}

// Dismiss запоминает отказ от установки приложения.
func (h *InstallPromptHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	handlerName := "InstallPromptDismiss"
	timer := prometheus.NewTimer(metrics.HttpRequestDuration.WithLabelValues(handlerName))
	defer timer.ObserveDuration()

	if err := h.kv.Write(kvstore.InstallPromptDismissKey, "true"); err != nil {
		h.logger.Error("ошибка записи флага баннера", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "не удалось сохранить флаг", handlerName)
		return
	}

	metrics.HttpRequestsTotal.WithLabelValues(handlerName, "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// respondWithJSON вспомогательная функция для отправки JSON-ответов.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError отправляет ошибку в JSON-обертке и пишет метрику.
func respondWithError(w http.ResponseWriter, code int, message string, handlerName string) {
	metrics.HttpRequestsTotal.WithLabelValues(handlerName, strconv.Itoa(code)).Inc()
	respondWithJSON(w, code, map[string]string{"error": message})
}
