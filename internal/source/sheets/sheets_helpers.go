package sheets

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

func unmarshalToken(data []byte, tok *oauth2.Token) error {
	if err := json.Unmarshal(data, tok); err != nil {
		return err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return errors.New("token file holds no usable token")
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 404
	}
	// The Sheets API reports an unknown sheet inside a known spreadsheet
	// as a 400 with a "Unable to parse range" message.
	return strings.Contains(err.Error(), "Unable to parse range")
}
