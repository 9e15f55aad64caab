package extractor

import "strings"

// Host alternatives accepted by the YouTube descriptors.
var (
	youtubeHosts = []string{
		`(?:\w+\.)?[yY][oO][uU][tT][uU][bB][eE](?:-nocookie|kids)?\.com`,
		`(?:www\.)?deturl\.com/www\.youtube\.com`,
		`(?:www\.)?pwnyoutube\.com`,
		`(?:www\.)?hooktube\.com`,
		`(?:www\.)?yourepeat\.com`,
		`tube\.majestyc\.net`,
		`youtube\.googleapis\.com`,
	}

	invidiousHosts = []string{
		`(?:www\.)?redirect\.invidious\.io`,
		`(?:(?:www|dev)\.)?invidio\.us`,
		`(?:(?:www|no)\.)?invidiou\.sh`,
		`(?:www\.)?invidious\.tiekoetter\.com`,
		`(?:www\.)?invidious\.nerdvpn\.de`,
		`(?:www\.)?invidious\.privacydev\.net`,
		`(?:www\.)?invidious\.flokinet\.to`,
		`(?:www\.)?inv\.riverside\.rocks`,
		`(?:www\.)?vid\.puffyan\.us`,
		`(?:www\.)?yewtu\.be`,
		`(?:www\.)?(?:invidious(?:-us)?|piped)\.kavin\.rocks`,
		`(?:(?:www|cf)\.)?piped\.video`,
		`(?:www\.)?piped\.projectsegfau\.lt`,
		`(?:www\.)?piped\.adminforge\.de`,
		`(?:www\.)?il\.ax`,
		`(?:www\.)?hyperpipe\.surge\.sh`,
	}
)

const (
	videoID    = `(?<id>[0-9A-Za-z_-]{11})`
	playlistID = `(?:(?:PL|LL|EC|UU|FL|RD|UL|TL|PU|OLAK5uy_)[0-9A-Za-z_-]{10,}|RDMM|WL|LL|LM)`

	tabReserved = `channel|c|user|playlist|watch|w|v|embed|e|live|watch_popup|clip|shorts|movies|` +
		`results|search|shared|hashtag|trending|explore|feed|feeds|browse|oembed|get_video_info|` +
		`iframe_api|s/player|source|storefront|oops|index|account|t/terms|about|upload|signin|logout`
)

func alt(parts ...[]string) string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return strings.Join(all, "|")
}

func youtubeVideoURL() string {
	hosts := alt(youtubeHosts, invidiousHosts)
	return `(?:https?://|//)(?:` +
		`(?:(?:` + hosts + `)/` +
		`(?:.*?\#/)?` +
		`(?:(?:(?:v|embed|e|shorts|live)/(?!videoseries|live_stream))` +
		`|(?:(?:(?:watch|movie)(?:_popup)?(?:\.php)?/?)?(?:\?|\#!?)(?:.*?[&;])??v=)))` +
		`|(?:youtu\.be|vid\.plus|zwearz\.com/watch|` + alt(invidiousHosts) + `)/` +
		`|(?:www\.)?cleanvideosearch\.com/media/action/yt/watch\?videoId=` +
		`)` + videoID + `(?:.+)?(?:\#|$)`
}

func youtubePlaylistURL() string {
	return `(?:(?:https?://)?(?:\w+\.)?(?:youtube(?:kids)?\.com|` + alt(invidiousHosts) + `)/.*?\?.*?\blist=)?` +
		`(?<id>` + playlistID + `)`
}

func youtubeTabURL() string {
	return `https?://(?!consent\.)(?:\w+\.)?(?:youtube(?:kids)?\.com|` + alt(invidiousHosts) + `)/` +
		`(?:(?<channel_type>channel|c|user|browse)/` +
		`|(?<not_channel>feed/|hashtag/|(?:playlist|watch)\?.*?\blist=)` +
		`|(?!(?:` + tabReserved + `)\b))` +
		`(?<id>[^/?\#&]+)`
}

// YouTube returns the builtin descriptor table: the YouTube family followed
// by the generic fallback, in resolution order.
func YouTube() []Descriptor {
	const netrc = "youtube"

	return []Descriptor{
		{
			Key:          "Youtube",
			Name:         "youtube",
			Description:  "YouTube",
			Patterns:     []string{youtubeVideoURL(), videoID + `(?:\#|$)`},
			Returns:      ReturnVideo,
			Override:     PreferIfCollectionContext(),
			AgeLimit:     18,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubePlaylist",
			Name:         "youtube:playlist",
			Description:  "YouTube playlists",
			Patterns:     []string{youtubePlaylistURL()},
			Returns:      ReturnPlaylist,
			Override:     RejectIfItemInCollectionContext(),
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeClip",
			Name:         "youtube:clip",
			Patterns:     []string{`https?://(?:www\.)?youtube\.com/clip/(?<id>[^/?#]+)`},
			Returns:      ReturnVideo,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeConsentRedirect",
			Name:         "youtube:consent",
			Patterns:     []string{`https?://consent\.youtube\.com/m\?`},
			Returns:      ReturnVideo,
			Hidden:       true,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeFavourites",
			Name:         "youtube:favorites",
			Description:  `YouTube liked videos; ":ytfav" keyword (requires cookies)`,
			Patterns:     []string{`:ytfav(?:ou?rite)?s?`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeHistory",
			Name:         "youtube:history",
			Description:  `Youtube watch history; ":ythis" keyword (requires cookies)`,
			Patterns:     []string{`:ythis(?:tory)?`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeLivestreamEmbed",
			Name:         "youtube:livestream_embed",
			Description:  "YouTube livestream embeds",
			Patterns:     []string{`https?://(?:\w+\.)?youtube\.com/embed/live_stream/?\?(?:[^#]+&)?channel=(?<id>[^&#]+)`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeMusicSearchURL",
			Name:         "youtube:music:search_url",
			Description:  "YouTube music search URLs with selectable sections, e.g. #songs",
			Patterns:     []string{`https?://music\.youtube\.com/search\?([^#]+&)?(?:search_query|q)=(?:[^&]+)(?:[&#]|$)`},
			Returns:      ReturnPlaylist,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeNotifications",
			Name:         "youtube:notif",
			Description:  `YouTube notifications; ":ytnotif" keyword (requires cookies)`,
			Patterns:     []string{`:ytnotif(?:ication)?s?`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeRecommended",
			Name:         "youtube:recommended",
			Description:  `YouTube recommended videos; ":ytrec" keyword`,
			Patterns:     []string{`https?://(?:www\.)?youtube\.com/?(?:[?#]|$)|:ytrec(?:ommended)?`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeSearchDate",
			Name:         "youtube:search:date",
			Description:  "YouTube search, newest videos first",
			SearchKey:    "ytsearchdate",
			Patterns:     []string{`ytsearchdate(?<prefix>|[1-9][0-9]*|all):(?<query>[\s\S]+)`},
			Returns:      ReturnPlaylist,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeSearch",
			Name:         "youtube:search",
			Description:  "YouTube search",
			SearchKey:    "ytsearch",
			Patterns:     []string{`ytsearch(?<prefix>|[1-9][0-9]*|all):(?<query>[\s\S]+)`},
			Returns:      ReturnPlaylist,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeSearchURL",
			Name:         "youtube:search_url",
			Description:  "YouTube search URLs with sorting and filter support",
			Patterns:     []string{`https?://(?:www\.)?youtube\.com/(?:results|search)\?([^#]+&)?(?:search_query|q)=(?:[^&]+)(?:[&#]|$)`},
			Returns:      ReturnPlaylist,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeShortsAudioPivot",
			Name:         "youtube:shorts:pivot:audio",
			Description:  "YouTube Shorts audio pivot (Shorts using audio of a given video)",
			Patterns:     []string{`https?://(?:www\.)?youtube\.com/source/(?<id>[\w-]{11})/shorts`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeSubscriptions",
			Name:         "youtube:subscriptions",
			Description:  `YouTube subscriptions feed; ":ytsubs" keyword (requires cookies)`,
			Patterns:     []string{`:ytsub(?:scription)?s?`},
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeTab",
			Name:         "youtube:tab",
			Description:  "YouTube Tabs",
			Patterns:     []string{youtubeTabURL()},
			Returns:      ReturnAny,
			Override:     DeferTo("Youtube"),
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeTruncatedID",
			Name:         "youtube:truncated_id",
			Patterns:     []string{`https?://(?:www\.)?youtube\.com/watch\?v=(?<id>[0-9A-Za-z_-]{1,10})$`},
			Hidden:       true,
			NetrcMachine: netrc,
		},
		{
			Key:  "YoutubeTruncatedURL",
			Name: "youtube:truncated_url",
			Patterns: []string{
				`(?:https?://)?(?:\w+\.)?[yY][oO][uU][tT][uU][bB][eE](?:-nocookie)?\.com/` +
					`(?:watch\?(?:feature=[a-z_]+|annotation_id=annotation_[^&]+|x-yt-cl=[0-9]+|hl=[^&]*|t=[0-9]+)?` +
					`|attribution_link\?a=[^&]+)$`,
			},
			Hidden:       true,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeWatchLater",
			Name:         "youtube:watchlater",
			Description:  `Youtube watch later list; ":ytwatchlater" keyword (requires cookies)`,
			Patterns:     []string{`:ytwatchlater`},
			NetrcMachine: netrc,
		},
		{
			Key:         "YoutubeWebArchive",
			Name:        "web.archive:youtube",
			Description: `web.archive.org saved youtube videos, "ytarchive:" prefix`,
			Patterns: []string{
				`ytarchive:` + videoID + `(?::(?<date2>[0-9]{14}))?$`,
				`(?:https?://)?web\.archive\.org/(?:web/)?(?:(?<date>[0-9]{14})?[0-9A-Za-z_*]*/)?` +
					`(?:https?(?::|%3[Aa])//)?` +
					`(?:(?:\w+\.)?youtube\.com(?::(?:80|443))?/watch(?:\.php)?(?:\?|%3[fF])(?:[^\#]+(?:&|%26))?v(?:=|%3[dD])` +
					`|(?:wayback-fakeurl\.archive\.org/yt/))` +
					videoID + `(?:%26|[#&]|$)`,
			},
			Returns: ReturnVideo,
		},
		{
			Key:          "YoutubeYtBe",
			Name:         "youtube:ytbe",
			Description:  "youtu.be",
			Patterns:     []string{`https?://youtu\.be/` + videoID + `/*?.*?\blist=(?<playlist_id>` + playlistID + `)`},
			Returns:      ReturnVideo,
			NetrcMachine: netrc,
		},
		{
			Key:          "YoutubeYtUser",
			Name:         "youtube:user",
			Description:  `YouTube user videos; "ytuser:" prefix`,
			Patterns:     []string{`ytuser:(?<id>.+)`},
			NetrcMachine: netrc,
		},
		{
			Key:         "Generic",
			Name:        "generic",
			Description: "Generic downloader that works on some sites",
			Patterns:    []string{`.*`},
			Returns:     ReturnAny,
			Fallback:    true,
			AgeLimit:    18,
		},
	}
}

// Default returns a registry over the builtin table with every descriptor
// bound to the default handler.
func Default(opts ...Option) *Registry {
	return MustNewRegistry(YouTube(), opts...)
}
