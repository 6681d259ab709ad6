package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Matches watch pages, shortlinks, embeds and nocookie URLs with an
// 11-character video id, plus playlist URLs on the same hosts.
var (
	videoURLRegex = regexp.MustCompile(
		`^(https?://)?(www\.)?(m\.)?(youtube\.com|youtu\.be|youtube-nocookie\.com)/` +
			`((watch\?v=|embed/|v/|.+\?v=)?[^&=%?]{11}|playlist\?list=[A-Za-z0-9_-]+)`)
)

// IsVideoURL reports whether the string is an acceptable video-hosting URL.
// Side-effect free; rejection happens at submission time, never in the queue.
func IsVideoURL(url string) bool {
	return videoURLRegex.MatchString(url)
}

// Register installs the youtube_url rule on the given validator instance.
func Register(v *validator.Validate) error {
	return v.RegisterValidation("youtube_url", validateVideoURL)
}

func validateVideoURL(fl validator.FieldLevel) bool {
	return IsVideoURL(fl.Field().String())
}
