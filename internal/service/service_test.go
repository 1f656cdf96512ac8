package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WhyILived/Dreamwell/internal/ai"
	"github.com/WhyILived/Dreamwell/internal/model"
	"github.com/WhyILived/Dreamwell/internal/youtube"
)

// fakeProvider is a scriptable youtube.Provider that counts calls.
type fakeProvider struct {
	searchPages   map[string][]youtube.ChannelPage // keyed by keywords, consumed in order
	channelStats  map[string]youtube.ChannelStats
	playlistIDs   map[string][]string
	channelVidIDs map[string][]string
	videoStats    map[string]youtube.VideoStats

	searchErr   map[string]error
	statsErr    error
	playlistErr map[string]error

	searchCalls   int
	statsCalls    int
	videoCalls    int
	playlistCalls int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		searchPages:   make(map[string][]youtube.ChannelPage),
		channelStats:  make(map[string]youtube.ChannelStats),
		playlistIDs:   make(map[string][]string),
		channelVidIDs: make(map[string][]string),
		videoStats:    make(map[string]youtube.VideoStats),
		searchErr:     make(map[string]error),
		playlistErr:   make(map[string]error),
	}
}

func (f *fakeProvider) SearchChannels(_ context.Context, keywords string, _ model.SearchFilters, pageToken string) (youtube.ChannelPage, error) {
	f.searchCalls++
	if err := f.searchErr[keywords]; err != nil {
		return youtube.ChannelPage{}, err
	}
	pages := f.searchPages[keywords]
	if len(pages) == 0 {
		return youtube.ChannelPage{}, nil
	}
	idx := 0
	if pageToken != "" {
		fmt.Sscanf(pageToken, "page-%d", &idx)
	}
	if idx >= len(pages) {
		return youtube.ChannelPage{}, nil
	}
	page := pages[idx]
	if idx+1 < len(pages) {
		page.NextPageToken = fmt.Sprintf("page-%d", idx+1)
	}
	return page, nil
}

func (f *fakeProvider) PlaylistVideoIDs(_ context.Context, playlistID string, max int) ([]string, error) {
	f.playlistCalls++
	if err := f.playlistErr[playlistID]; err != nil {
		return nil, err
	}
	ids := f.playlistIDs[playlistID]
	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

func (f *fakeProvider) ChannelVideoIDs(_ context.Context, channelID string, max int) ([]string, error) {
	ids := f.channelVidIDs[channelID]
	if len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

func (f *fakeProvider) ChannelStats(_ context.Context, ids []string) (map[string]youtube.ChannelStats, error) {
	f.statsCalls++
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	out := make(map[string]youtube.ChannelStats)
	for _, id := range ids {
		if st, ok := f.channelStats[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (f *fakeProvider) VideoStats(_ context.Context, ids []string) (map[string]youtube.VideoStats, error) {
	f.videoCalls++
	out := make(map[string]youtube.VideoStats)
	for _, id := range ids {
		if st, ok := f.videoStats[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

// addChannel wires a channel through search, stats, and a video sample
// in one call.
func (f *fakeProvider) addChannel(keyword, id string, subs int64, videoViews ...int64) {
	ch := model.Channel{ID: id, Title: "Channel " + id}
	pages := f.searchPages[keyword]
	if len(pages) == 0 {
		pages = []youtube.ChannelPage{{}}
	}
	pages[0].Channels = append(pages[0].Channels, ch)
	f.searchPages[keyword] = pages

	playlist := "UU-" + id
	f.channelStats[id] = youtube.ChannelStats{
		ID:              id,
		Title:           "Channel " + id,
		Description:     "fitness videos",
		Country:         "US",
		Subscribers:     &subs,
		ViewCount:       subs * 10,
		VideoCount:      int64(len(videoViews)),
		UploadsPlaylist: playlist,
	}

	var vids []string
	for i, views := range videoViews {
		vid := fmt.Sprintf("%s-v%d", id, i)
		vids = append(vids, vid)
		f.videoStats[vid] = youtube.VideoStats{
			ID:    vid,
			Views: views,
			Likes: views / 20,
		}
	}
	f.playlistIDs[playlist] = vids
}

// fakeChat is a scriptable ai.ChatClient.
type fakeChat struct {
	reply string
	err   error
	calls int
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, _ ai.ChatCompletionRequest) (ai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return ai.ChatCompletionResponse{}, f.err
	}
	return ai.ChatCompletionResponse{
		Choices: []ai.ChatCompletionChoice{{Message: ai.ChatMessage{Role: "assistant", Content: f.reply}}},
	}, nil
}

func scoringJSON(values, cultural, cost, revenue, engagement float64) string {
	return fmt.Sprintf(`{
		"values_alignment": {"score": %v, "rationale": "v"},
		"cultural_fit": {"score": %v, "rationale": "c"},
		"cost_efficiency": {"score": %v, "rationale": "$"},
		"revenue_potential": {"score": %v, "rationale": "r"},
		"engagement_quality": {"score": %v, "rationale": "e"}
	}`, values, cultural, cost, revenue, engagement)
}

var errProviderDown = errors.New("provider down")

func frozenClock() func() time.Time {
	fixed := time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}
