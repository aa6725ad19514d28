package controller

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "callback", updateKind(&models.Update{CallbackQuery: &models.CallbackQuery{}}))
	assert.Equal(t, "command", updateKind(&models.Update{Message: &models.Message{Text: "/week"}}))
	assert.Equal(t, "message", updateKind(&models.Update{Message: &models.Message{Text: "03.06 18:30"}}))
	assert.Equal(t, "other", updateKind(&models.Update{}))
}

func TestMatchCommand(t *testing.T) {
	match := matchCommand("day")

	assert.True(t, match(&models.Update{Message: &models.Message{Text: "/day"}}))
	assert.True(t, match(&models.Update{Message: &models.Message{Text: "/day 03.06"}}))
	assert.True(t, match(&models.Update{Message: &models.Message{Text: "/day@coach_bot"}}))
	assert.False(t, match(&models.Update{Message: &models.Message{Text: "/days"}}))
	assert.False(t, match(&models.Update{Message: &models.Message{Text: "day"}}))
	assert.False(t, match(&models.Update{CallbackQuery: &models.CallbackQuery{Data: "/day"}}))
}
