package services

// BuildProcessingRequest 从草稿快照与已解析的引用组装处理请求。
// 纯函数：音乐提示词在音乐关闭或自动模式下解析为空串；
// 马赛克地址在禁用或暂存失败时为空列表。
func BuildProcessingRequest(draft SubmissionDraft, jobID int64, mosaicURLs []string) ProcessingRequest {
	urls := make([]string, 0, len(mosaicURLs))
	urls = append(urls, mosaicURLs...)

	musicPrompt := ""
	if draft.MusicEnabled && !draft.MusicAuto {
		musicPrompt = draft.MusicPrompt
	}

	return ProcessingRequest{
		Prompt:      draft.PromptText,
		JobID:       jobID,
		MosaicURLs:  urls,
		Title:       draft.Title,
		Subtitle:    draft.SubtitleEnabled,
		MusicPrompt: musicPrompt,
		AutoMusic:   draft.MusicEnabled && draft.MusicAuto,
	}
}
