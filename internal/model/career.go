package model

// Per-match history rows consumed by the career engine. All three history
// kinds are sorted ascending by match date before any trend math runs.

type MatchPerformance struct {
	MatchID     string  `json:"match_id"`
	Date        string  `json:"date"`
	Map         string  `json:"map"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	ADR         float64 `json:"adr"`
	HeadshotPct float64 `json:"headshot_pct"`
	MVPs        int     `json:"mvps"`
	Score       int     `json:"score"`
	Result      string  `json:"result"` // WIN, LOSS, TIE
	KD          float64 `json:"kd"`
}

type MatchSentiment struct {
	MatchID           string  `json:"match_id"`
	Date              string  `json:"date"`
	MessageCount      int     `json:"message_count"`
	AvgPositive       float64 `json:"avg_positive"`
	AvgNegative       float64 `json:"avg_negative"`
	AvgNeutral        float64 `json:"avg_neutral"`
	ToxicityScore     float64 `json:"toxicity_score"`
	DominantSentiment string  `json:"dominant_sentiment"`
}

type MatchFlashStats struct {
	MatchID            string  `json:"match_id"`
	Date               string  `json:"date"`
	EnemiesFlashed     int     `json:"enemies_flashed"`
	EnemyBlindDuration float64 `json:"enemy_blind_duration"`
	TeammatesFlashed   int     `json:"teammates_flashed"`
	TeamBlindDuration  float64 `json:"team_blind_duration"`
	SelfFlashes        int     `json:"self_flashes"`
	FlashesThrown      int     `json:"flashes_thrown"`
	Efficiency         float64 `json:"efficiency"` // enemies flashed / flashes thrown
}

// CareerTrends holds least-squares slopes per match index. Positive means
// the metric is rising over time.
type CareerTrends struct {
	KDTrend              float64 `json:"kd_trend"`
	ADRTrend             float64 `json:"adr_trend"`
	WinRateTrend         float64 `json:"win_rate_trend"`
	HeadshotTrend        float64 `json:"headshot_trend"`
	ToxicityTrend        float64 `json:"toxicity_trend"`
	FlashEfficiencyTrend float64 `json:"flash_efficiency_trend"`
	TeamFlashTrend       float64 `json:"team_flash_trend"` // negative is good
}

type CareerAverages struct {
	KD                       float64 `json:"kd"`
	ADR                      float64 `json:"adr"`
	WinRate                  float64 `json:"win_rate"`
	HeadshotPct              float64 `json:"headshot_pct"`
	KillsPerMatch            float64 `json:"kills_per_match"`
	DeathsPerMatch           float64 `json:"deaths_per_match"`
	MVPsPerMatch             float64 `json:"mvps_per_match"`
	Toxicity                 float64 `json:"toxicity"`
	MessagesPerMatch         float64 `json:"messages_per_match"`
	EnemiesFlashedPerMatch   float64 `json:"enemies_flashed_per_match"`
	TeammatesFlashedPerMatch float64 `json:"teammates_flashed_per_match"`
	FlashEfficiency          float64 `json:"flash_efficiency"`
}

type CareerMilestones struct {
	BestKDMatch        string  `json:"best_kd_match"`
	BestKDValue        float64 `json:"best_kd_value"`
	WorstKDMatch       string  `json:"worst_kd_match"`
	WorstKDValue       float64 `json:"worst_kd_value"`
	HighestKillsMatch  string  `json:"highest_kills_match"`
	HighestKillsValue  int     `json:"highest_kills_value"`
	MostToxicMatch     string  `json:"most_toxic_match"`
	MostToxicValue     float64 `json:"most_toxic_value"`
	BestFlashMatch     string  `json:"best_flash_match"`
	BestFlashValue     int     `json:"best_flash_value"`
	LongestWinStreak   int     `json:"longest_win_streak"`
	LongestLossStreak  int     `json:"longest_loss_streak"`
	CurrentStreak      int     `json:"current_streak"` // + wins, - losses
	CurrentStreakType  string  `json:"current_streak_type"`
}

// Form ratings for RecentForm.
const (
	FormHot     = "HOT"
	FormAverage = "AVERAGE"
	FormCold    = "COLD"
)

type RecentForm struct {
	MatchesAnalyzed int     `json:"matches_analyzed"`
	RecentKD        float64 `json:"recent_kd"`
	CareerKD        float64 `json:"career_kd"`
	KDDiff          float64 `json:"kd_diff"`
	RecentADR       float64 `json:"recent_adr"`
	CareerADR       float64 `json:"career_adr"`
	ADRDiff         float64 `json:"adr_diff"`
	RecentWinRate   float64 `json:"recent_win_rate"`
	CareerWinRate   float64 `json:"career_win_rate"`
	WinRateDiff     float64 `json:"win_rate_diff"`
	FormRating      string  `json:"form_rating"`
}

type MapStats struct {
	Matches   int     `json:"matches"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	WinRate   float64 `json:"win_rate"`
	AvgKills  float64 `json:"avg_kills"`
	AvgDeaths float64 `json:"avg_deaths"`
	AvgADR    float64 `json:"avg_adr"`
	KD        float64 `json:"kd"`
}

// PlayerCareer is the full career profile for one player, rebuilt from
// persisted match history on every invocation.
type PlayerCareer struct {
	PlayerID       uint64 `json:"player_id,string"`
	PlayerName     string `json:"player_name"`
	FirstMatchDate string `json:"first_match_date,omitempty"`
	LastMatchDate  string `json:"last_match_date,omitempty"`
	TotalMatches   int    `json:"total_matches"`

	PerformanceHistory []MatchPerformance `json:"performance_history"`
	SentimentHistory   []MatchSentiment   `json:"sentiment_history"`
	FlashHistory       []MatchFlashStats  `json:"flash_history"`

	CareerAvg  CareerAverages      `json:"career_avg"`
	Trends     CareerTrends        `json:"trends"`
	Milestones CareerMilestones    `json:"milestones"`
	RecentForm RecentForm          `json:"recent_form"`
	MapStats   map[string]MapStats `json:"map_stats"`
}
