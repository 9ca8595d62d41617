package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/debate-system/models"
	"github.com/Dosada05/debate-system/storage"
)

// --- Общие хелперы ---

func populateTournamentCrestURL(tournament *models.Tournament, uploader storage.FileUploader) {
	if tournament != nil && tournament.CrestKey != nil && *tournament.CrestKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*tournament.CrestKey)
		if url != "" {
			tournament.CrestURL = &url
		}
	}
}

func populateTeamCrestURL(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.CrestKey != nil && *team.CrestKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.CrestKey)
		if url != "" {
			team.CrestURL = &url
		}
	}
}

func getExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: %q", contentType)
	}
}
