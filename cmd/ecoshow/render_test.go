package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ecogw/internal/domain/models"
)

func TestRenderWindow(t *testing.T) {
	days := []models.WindowDay{
		{Offset: 0, Date: models.Date{Year: 2024, Month: time.March, Day: 2}, Color: "green"},
		{Offset: 1, Date: models.Date{Year: 2024, Month: time.March, Day: 3}, Color: "red", Message: "coupures"},
	}

	var buf bytes.Buffer
	renderWindow(&buf, days, true)
	assert.Equal(t,
		"J0   (02/03/2024) color: green, message: \"\"\n"+
			"J+1  (03/03/2024) color: red, message: \"coupures\"\n",
		buf.String())

	buf.Reset()
	renderWindow(&buf, days[:1], false)
	assert.Equal(t, "J0   (02/03/2024) color: green\n", buf.String())
}

func TestRenderRegisters(t *testing.T) {
	var buf bytes.Buffer
	renderRegisters(&buf, 100, []byte{0, 3, 1, 0})
	assert.Equal(t, "  100: 3\n  101: 256\n", buf.String())
}
