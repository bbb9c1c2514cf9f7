package notifier

import (
	"bytes"
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_WritesWarning(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewZapLogger(logger.ZapLoggerConfig{Level: "info", Output: &buf})
	require.NoError(t, err)

	NewLogNotifier(log).Error(context.Background(), "Erro na alteração de quantidade do produto")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "Erro na alteração de quantidade do produto")
	assert.Contains(t, buf.String(), `"channel":"notification"`)
}
