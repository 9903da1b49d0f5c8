package normalize

// contractions maps apostrophe forms to their dictionary spelling.
var contractions = map[string]string{
	"ain't":     "aint",
	"aren't":    "arent",
	"can't":     "cant",
	"couldn't":  "couldnt",
	"didn't":    "didnt",
	"doesn't":   "doesnt",
	"don't":     "dont",
	"hadn't":    "hadnt",
	"hasn't":    "hasnt",
	"haven't":   "havent",
	"he'd":      "hed",
	"he'll":     "hell",
	"he's":      "hes",
	"i'd":       "id",
	"i'll":      "ill",
	"i'm":       "im",
	"i've":      "ive",
	"isn't":     "isnt",
	"it'd":      "itd",
	"it'll":     "itll",
	"it's":      "its",
	"let's":     "lets",
	"she'd":     "shed",
	"she'll":    "shell",
	"she's":     "shes",
	"shouldn't": "shouldnt",
	"that's":    "thats",
	"there's":   "theres",
	"they'd":    "theyd",
	"they'll":   "theyll",
	"they're":   "theyre",
	"they've":   "theyve",
	"wasn't":    "wasnt",
	"we'd":      "wed",
	"we'll":     "well",
	"we're":     "were",
	"we've":     "weve",
	"weren't":   "werent",
	"what's":    "whats",
	"where's":   "wheres",
	"who's":     "whos",
	"won't":     "wont",
	"wouldn't":  "wouldnt",
	"y'all":     "yall",
	"you'd":     "youd",
	"you'll":    "youll",
	"you're":    "youre",
	"you've":    "youve",
	"'cause":    "cause",
	"'til":      "til",
	"'em":       "em",
	"o'er":      "oer",
	"e'er":      "eer",
	"ne'er":     "neer",
	"lovin'":    "loving",
	"nothin'":   "nothing",
	"somethin'": "something",
	"goin'":     "going",
}

// acronyms spells out letter sequences the way they are sung.
var acronyms = map[string]string{
	"ai":  "ayeye",
	"dj":  "deejay",
	"mc":  "emcee",
	"tv":  "teevee",
	"ok":  "okay",
	"pc":  "peesee",
	"uk":  "youkay",
	"usa": "youesay",
	"nyc": "enwhysee",
	"ufo": "youeffoh",
}
