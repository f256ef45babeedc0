package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracer_NilConfig(t *testing.T) {
	tp, err := NewTracer(nil, "cronpoll", "1.0.0")

	assert.Nil(t, tp)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNewTracer_Disabled(t *testing.T) {
	tp, err := NewTracer(&Config{Enabled: false}, "", "")

	require.NoError(t, err)
	assert.NotNil(t, tp)
	_ = tp.Shutdown(context.Background())
}

func TestNewTracer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		service string
		wantErr error
	}{
		{
			name:    "empty service name",
			cfg:     &Config{Enabled: true, OTLP: &OTLPConfig{Endpoint: "localhost:4318"}},
			wantErr: ErrEmptyServiceName,
		},
		{
			name:    "nil otlp",
			cfg:     &Config{Enabled: true},
			service: "cronpoll",
			wantErr: ErrEmptyEndpoint,
		},
		{
			name:    "empty endpoint",
			cfg:     &Config{Enabled: true, OTLP: &OTLPConfig{}},
			service: "cronpoll",
			wantErr: ErrEmptyEndpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := NewTracer(tt.cfg, tt.service, "1.0.0")
			assert.Nil(t, tp)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewTracer_Success(t *testing.T) {
	endpoints := []string{"localhost:4318", "http://localhost:4318", "https://collector.example.com"}

	for _, endpoint := range endpoints {
		t.Run(endpoint, func(t *testing.T) {
			cfg := &Config{
				Enabled:      true,
				SamplingRate: 0.5,
				OTLP: &OTLPConfig{
					Endpoint: endpoint,
					Headers:  map[string]string{"Authorization": "Bearer token"},
				},
			}

			tp, err := NewTracer(cfg, "cronpoll", "1.0.0")

			require.NoError(t, err)
			assert.NotNil(t, tp)
			_ = tp.Shutdown(context.Background())
		})
	}
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions(&OTLPConfig{Endpoint: "localhost:4318"}), 2)
	assert.Len(t, exporterOptions(&OTLPConfig{Endpoint: "http://localhost:4318"}), 2)
	assert.Len(t, exporterOptions(&OTLPConfig{Endpoint: "https://collector"}), 1)
	assert.Len(t, exporterOptions(&OTLPConfig{
		Endpoint: "https://collector",
		Headers:  map[string]string{"k": "v"},
	}), 2)
}

func TestSamplingRate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 1},
		{"zero", 0, 1},
		{"greater than 1", 1.5, 1},
		{"valid", 0.1, 0.1},
		{"one", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, samplingRate(tt.in))
		})
	}
}

func TestMustNewTracer(t *testing.T) {
	assert.Panics(t, func() {
		MustNewTracer(nil, "cronpoll", "1.0.0")
	})

	assert.NotPanics(t, func() {
		tp := MustNewTracer(&Config{}, "cronpoll", "1.0.0")
		_ = tp.Shutdown(context.Background())
	})
}
