package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ProductsCreated.Inc()
	m.ProductsCreated.Inc()
	m.ProductsDeleted.Inc()
	m.RequestsTotal.WithLabelValues("GET", "/products", "200").Inc()

	if got := testutil.ToFloat64(m.ProductsCreated); got != 2 {
		t.Errorf("products_created_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProductsDeleted); got != 1 {
		t.Errorf("products_deleted_total = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{"catalog_products_created_total", "catalog_http_requests_total"} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestNewRegistryIncludesRuntimeCollectors(t *testing.T) {
	families, err := NewRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Error("expected runtime metrics")
	}
}
