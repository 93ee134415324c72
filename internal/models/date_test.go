package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"contactbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var c models.ContactCreate
	err := json.Unmarshal([]byte(`{"birthday":"1990-02-14"}`), &c)
	require.NoError(t, err)
	require.NotNil(t, c.Birthday)
	assert.Equal(t, models.NewDate(1990, time.February, 14), *c.Birthday)

	out, err := json.Marshal(models.Contact{Birthday: c.Birthday})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"birthday":"1990-02-14"`)

	err = json.Unmarshal([]byte(`{"birthday":"14.02.1990"}`), &c)
	assert.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	var d models.Date

	require.NoError(t, d.Scan(time.Date(2001, time.March, 4, 13, 5, 0, 0, time.FixedZone("x", 3600))))
	assert.Equal(t, "2001-03-04", d.String())

	require.NoError(t, d.Scan("2002-05-06 00:00:00+00:00"))
	assert.Equal(t, "2002-05-06", d.String())

	require.NoError(t, d.Scan([]byte("2003-07-08")))
	assert.Equal(t, "2003-07-08", d.String())

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("bad"))
}

func TestContactUpdate_ChangesOnlyPresentFields(t *testing.T) {
	phone := "555-0101"
	u := models.ContactUpdate{Phone: &phone}

	assert.Equal(t, map[string]interface{}{"phone": "555-0101"}, u.Changes())
	assert.Empty(t, models.ContactUpdate{}.Changes())
}
