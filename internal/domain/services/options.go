package services

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize размер пачки товаров и вариантов при импорте
const DefaultBatchSize = 1000

// DefaultConcurrency число одновременных вызовов Commercetools в одной операции
const DefaultConcurrency = 16

// Options настройки синхронизации, передаются в сервисы при создании
type Options struct {
	// RollBackOnFailure откатывать созданное при ошибке шага импорта
	RollBackOnFailure bool
	// AllowCleanCommerce разрешает очистку Commercetools
	AllowCleanCommerce bool
	// RecreateProductsOnProductStructureChange пересоздавать товар при смене типа
	RecreateProductsOnProductStructureChange bool
	// IncludeProductStructureAliases алиасы атрибутов товара, попадающие в тип товара.
	// nil не включает ни одного, "all" включает все.
	IncludeProductStructureAliases []string
	BatchSize                      int
	Concurrency                    int
}

func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// fanOut запускает fn для каждого элемента и ждет завершения всех вызовов.
// Ошибки вызовы пишут в накопитель сами, поэтому группа не отменяется.
func fanOut[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T)) {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		g.Go(func() error {
			fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
}

// fanOutFilter как fanOut, но возвращает элементы, для которых fn вернул true.
// Порядок входного списка сохраняется.
func fanOutFilter[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) bool) []T {
	done := make([]bool, len(items))
	indexes := make([]int, len(items))
	for n := range items {
		indexes[n] = n
	}
	fanOut(ctx, limit, indexes, func(ctx context.Context, n int) {
		done[n] = fn(ctx, items[n])
	})
	return keep(items, done)
}

func keep[T any](items []T, done []bool) []T {
	out := make([]T, 0, len(items))
	for n, item := range items {
		if done[n] {
			out = append(out, item)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
