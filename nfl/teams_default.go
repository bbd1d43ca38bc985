package nfl

// DefaultTeams returns the current 32-team league. Used as a fallback when
// no teams.json snapshot exists in the cache directory.
func DefaultTeams() []Team {
	return []Team{
		{ID: "buf", Abbreviation: "BUF", Name: "Buffalo Bills", DisplayName: "Bills", Conference: AFC, Division: East},
		{ID: "mia", Abbreviation: "MIA", Name: "Miami Dolphins", DisplayName: "Dolphins", Conference: AFC, Division: East},
		{ID: "ne", Abbreviation: "NE", Name: "New England Patriots", DisplayName: "Patriots", Conference: AFC, Division: East},
		{ID: "nyj", Abbreviation: "NYJ", Name: "New York Jets", DisplayName: "Jets", Conference: AFC, Division: East},
		{ID: "bal", Abbreviation: "BAL", Name: "Baltimore Ravens", DisplayName: "Ravens", Conference: AFC, Division: North},
		{ID: "cin", Abbreviation: "CIN", Name: "Cincinnati Bengals", DisplayName: "Bengals", Conference: AFC, Division: North},
		{ID: "cle", Abbreviation: "CLE", Name: "Cleveland Browns", DisplayName: "Browns", Conference: AFC, Division: North},
		{ID: "pit", Abbreviation: "PIT", Name: "Pittsburgh Steelers", DisplayName: "Steelers", Conference: AFC, Division: North},
		{ID: "hou", Abbreviation: "HOU", Name: "Houston Texans", DisplayName: "Texans", Conference: AFC, Division: South},
		{ID: "ind", Abbreviation: "IND", Name: "Indianapolis Colts", DisplayName: "Colts", Conference: AFC, Division: South},
		{ID: "jax", Abbreviation: "JAX", Name: "Jacksonville Jaguars", DisplayName: "Jaguars", Conference: AFC, Division: South},
		{ID: "ten", Abbreviation: "TEN", Name: "Tennessee Titans", DisplayName: "Titans", Conference: AFC, Division: South},
		{ID: "den", Abbreviation: "DEN", Name: "Denver Broncos", DisplayName: "Broncos", Conference: AFC, Division: West},
		{ID: "kc", Abbreviation: "KC", Name: "Kansas City Chiefs", DisplayName: "Chiefs", Conference: AFC, Division: West},
		{ID: "lv", Abbreviation: "LV", Name: "Las Vegas Raiders", DisplayName: "Raiders", Conference: AFC, Division: West},
		{ID: "lac", Abbreviation: "LAC", Name: "Los Angeles Chargers", DisplayName: "Chargers", Conference: AFC, Division: West},
		{ID: "dal", Abbreviation: "DAL", Name: "Dallas Cowboys", DisplayName: "Cowboys", Conference: NFC, Division: East},
		{ID: "nyg", Abbreviation: "NYG", Name: "New York Giants", DisplayName: "Giants", Conference: NFC, Division: East},
		{ID: "phi", Abbreviation: "PHI", Name: "Philadelphia Eagles", DisplayName: "Eagles", Conference: NFC, Division: East},
		{ID: "wsh", Abbreviation: "WSH", Name: "Washington Commanders", DisplayName: "Commanders", Conference: NFC, Division: East},
		{ID: "chi", Abbreviation: "CHI", Name: "Chicago Bears", DisplayName: "Bears", Conference: NFC, Division: North},
		{ID: "det", Abbreviation: "DET", Name: "Detroit Lions", DisplayName: "Lions", Conference: NFC, Division: North},
		{ID: "gb", Abbreviation: "GB", Name: "Green Bay Packers", DisplayName: "Packers", Conference: NFC, Division: North},
		{ID: "min", Abbreviation: "MIN", Name: "Minnesota Vikings", DisplayName: "Vikings", Conference: NFC, Division: North},
		{ID: "atl", Abbreviation: "ATL", Name: "Atlanta Falcons", DisplayName: "Falcons", Conference: NFC, Division: South},
		{ID: "car", Abbreviation: "CAR", Name: "Carolina Panthers", DisplayName: "Panthers", Conference: NFC, Division: South},
		{ID: "no", Abbreviation: "NO", Name: "New Orleans Saints", DisplayName: "Saints", Conference: NFC, Division: South},
		{ID: "tb", Abbreviation: "TB", Name: "Tampa Bay Buccaneers", DisplayName: "Buccaneers", Conference: NFC, Division: South},
		{ID: "ari", Abbreviation: "ARI", Name: "Arizona Cardinals", DisplayName: "Cardinals", Conference: NFC, Division: West},
		{ID: "lar", Abbreviation: "LAR", Name: "Los Angeles Rams", DisplayName: "Rams", Conference: NFC, Division: West},
		{ID: "sf", Abbreviation: "SF", Name: "San Francisco 49ers", DisplayName: "49ers", Conference: NFC, Division: West},
		{ID: "sea", Abbreviation: "SEA", Name: "Seattle Seahawks", DisplayName: "Seahawks", Conference: NFC, Division: West},
	}
}
