// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/internal/render"
	"github.com/pdiddy/paper-miner/pkg/types"
)

func TestAccessionRenderConfig(t *testing.T) {
	base := types.PipelineConfig{
		Render: types.RenderConfig{Engine: types.EngineHTTP, Timeout: 5 * time.Second, UserAgent: "ua"},
	}

	tests := []struct {
		name   string
		engine types.RenderEngine
		want   types.RenderEngine
	}{
		{"unset uses the browser", "", types.EngineBrowser},
		{"browser", types.EngineBrowser, types.EngineBrowser},
		{"explicit http", types.EngineHTTP, types.EngineHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Accession.Engine = tt.engine
			got := accessionRenderConfig(cfg)
			assert.Equal(t, tt.want, got.Engine)
			assert.Equal(t, "ua", got.UserAgent)
			assert.Equal(t, 5*time.Second, got.Timeout)
		})
	}
}

func TestPipelineConfig_AccessionsDefaultToBrowser(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()

	cfg, err := pipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, types.EngineHTTP, cfg.Render.Engine)

	r, err := render.New(accessionRenderConfig(cfg), nil, nil)
	require.NoError(t, err)
	defer r.Close()
	assert.IsType(t, &render.BrowserRenderer{}, r)
}

func TestPipelineConfig_RejectsUnknownMode(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.Set("extraction.mode", "guess")

	_, err := pipelineConfig()
	assert.ErrorContains(t, err, "unknown extraction mode")
}
